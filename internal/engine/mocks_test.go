package engine_test

// Mocks de los ports para los tests del engine.

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

type mockArtifact struct {
	key      string
	examples int
}

func (a *mockArtifact) Key() string { return a.key }

type mockPredictor struct {
	mu sync.Mutex

	scores  []float64
	predErr error
	fitErr  error
	swapErr error

	fitCalls  int
	swapCalls int
	active    ports.Artifact
}

func (m *mockPredictor) Predict(_ context.Context, _ []domain.Outcome) ([]float64, error) {
	if m.predErr != nil {
		return nil, m.predErr
	}
	return m.scores, nil
}

func (m *mockPredictor) Fit(_ context.Context, examples []ports.TrainingExample) (ports.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fitCalls++
	if m.fitErr != nil {
		return nil, m.fitErr
	}
	return &mockArtifact{key: "mock", examples: len(examples)}, nil
}

func (m *mockPredictor) Swap(a ports.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.swapErr != nil {
		return m.swapErr
	}
	m.swapCalls++
	m.active = a
	return nil
}

func (m *mockPredictor) Encode(_ ports.Artifact) ([]byte, error) {
	return []byte("blob"), nil
}

func (m *mockPredictor) stats() (fit, swap int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fitCalls, m.swapCalls
}

type mockModelStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saveErr error
}

func newMockModelStore() *mockModelStore {
	return &mockModelStore{blobs: make(map[string][]byte)}
}

func (m *mockModelStore) LoadModel(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, ports.ErrModelNotFound
	}
	return blob, nil
}

func (m *mockModelStore) SaveModel(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.blobs[key] = blob
	return nil
}

func (m *mockModelStore) saved(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

type mockNotifier struct {
	settled   []domain.SettlementResult
	awaiting  int
	exhausted int
	summaries int
}

func (m *mockNotifier) RoundSettled(_ context.Context, r domain.SettlementResult, _ domain.SessionStats) error {
	m.settled = append(m.settled, r)
	return nil
}

func (m *mockNotifier) AwaitingHistory(_ context.Context, _, _ int) error {
	m.awaiting++
	return nil
}

func (m *mockNotifier) Exhausted(_ context.Context, _ domain.SessionStats) error {
	m.exhausted++
	return nil
}

func (m *mockNotifier) Summary(_ context.Context, _ domain.SessionStats) error {
	m.summaries++
	return nil
}

type mockRoundStorage struct {
	rounds  []domain.SettlementResult
	saveErr error
}

func (m *mockRoundStorage) SaveRound(_ context.Context, _ string, r domain.SettlementResult) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rounds = append(m.rounds, r)
	return nil
}

func (m *mockRoundStorage) GetRounds(_ context.Context, _ string, _, _ time.Time) ([]domain.SettlementResult, error) {
	return m.rounds, nil
}

func (m *mockRoundStorage) Close() error { return nil }

// fakeFeed entrega una secuencia fija de resultados y cierra el canal.
type fakeFeed struct {
	out chan domain.Outcome
}

func newFakeFeed(outcomes ...domain.Outcome) *fakeFeed {
	f := &fakeFeed{out: make(chan domain.Outcome, len(outcomes))}
	for _, o := range outcomes {
		f.out <- o
	}
	close(f.out)
	return f
}

func (f *fakeFeed) Outcomes() <-chan domain.Outcome { return f.out }

func (f *fakeFeed) Run(_ context.Context) error { return nil }
