package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/engine"
)

// scoresFavoring devuelve un vector de scores con toda la masa en los
// números dados, en orden de preferencia.
func scoresFavoring(outcomes ...domain.Outcome) []float64 {
	scores := make([]float64, domain.AlphabetSize)
	for i, o := range outcomes {
		scores[o] = 1.0 - float64(i)*0.1
	}
	return scores
}

func testConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.WindowLength = 3
	return cfg
}

func newTestEngine(t *testing.T, cfg engine.Config, name string, pred *mockPredictor) (*engine.Engine, *mockNotifier, *mockRoundStorage) {
	t.Helper()
	notifier := &mockNotifier{}
	store := &mockRoundStorage{}
	eng, err := engine.New(cfg, mustSpec(t, name), "session-test", pred, nil, store, notifier)
	require.NoError(t, err)
	return eng, notifier, store
}

func TestEngine_New_RejectsBadConfig(t *testing.T) {
	pred := &mockPredictor{}
	notifier := &mockNotifier{}

	cfg := testConfig()
	cfg.WindowLength = 0
	_, err := engine.New(cfg, mustSpec(t, "top1"), "s", pred, nil, nil, notifier)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.InitialBalance = decimal.Zero
	_, err = engine.New(cfg, mustSpec(t, "top1"), "s", pred, nil, nil, notifier)
	assert.Error(t, err)

	_, err = engine.New(testConfig(), mustSpec(t, "top1"), "s", nil, nil, nil, notifier)
	assert.Error(t, err)

	_, err = engine.New(testConfig(), mustSpec(t, "top1"), "s", pred, nil, nil, nil)
	assert.Error(t, err)
}

func TestEngine_AwaitsHistoryBeforeBetting(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, notifier, _ := newTestEngine(t, testConfig(), "top1", pred)
	ctx := context.Background()

	r := eng.OnOutcome(ctx, 1)
	assert.Equal(t, engine.StateAwaitingHistory, r.State)
	assert.Equal(t, 1, r.Have)
	assert.Equal(t, 3, r.Need)
	assert.Nil(t, r.Settlement)

	r = eng.OnOutcome(ctx, 2)
	assert.Equal(t, engine.StateAwaitingHistory, r.State)
	assert.Equal(t, 2, r.Have)

	assert.Equal(t, 2, notifier.awaiting)
	assert.Empty(t, notifier.settled)
	assert.Equal(t, engine.StateAwaitingHistory, eng.State())
}

func TestEngine_ActivatesAndSettlesOnFullWindow(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, notifier, store := newTestEngine(t, testConfig(), "top1", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)

	// El tercer resultado completa la ventana y se liquida en el mismo
	// ciclo: predicción {7}, realizado 7 → WIN.
	r := eng.OnOutcome(ctx, 7)
	require.Equal(t, engine.StateActive, r.State)
	require.NotNil(t, r.Settlement)

	s := r.Settlement
	assert.True(t, s.Won)
	assert.Equal(t, domain.Outcome(7), s.Realized)
	assert.Equal(t, domain.Prediction{7}, s.Prediction)
	// stake 0.01, pago 35: 10 − 0.01 + 0.35
	assert.True(t, s.NewBalance.Equal(decimal.RequireFromString("10.34")), "balance = %s", s.NewBalance)

	require.Len(t, notifier.settled, 1)
	require.Len(t, store.rounds, 1)
	assert.Equal(t, engine.StateActive, eng.State())
}

func TestEngine_LossPath(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, _, _ := newTestEngine(t, testConfig(), "top1", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	r := eng.OnOutcome(ctx, 0) // predicción {7}, sale 0

	require.NotNil(t, r.Settlement)
	assert.False(t, r.Settlement.Won)
	assert.True(t, r.Settlement.NewBalance.Equal(decimal.RequireFromString("9.99")))
}

func TestEngine_IgnoresInvalidOutcome(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, _, _ := newTestEngine(t, testConfig(), "top1", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	r := eng.OnOutcome(ctx, 99) // fuera del alfabeto

	// No cuenta como historia ni produce liquidación
	assert.Equal(t, 1, r.Have)
	assert.Nil(t, r.Settlement)
}

func TestEngine_ExhaustionIsTerminal(t *testing.T) {
	// Con fracción 1 y cap holgado una sola ronda perdida agota el bankroll.
	cfg := testConfig()
	cfg.BettingFraction = decimal.NewFromInt(1)
	cfg.PerUnitCap = decimal.NewFromInt(1000)

	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, notifier, _ := newTestEngine(t, cfg, "top1", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	r := eng.OnOutcome(ctx, 0)

	require.Equal(t, engine.StateExhausted, r.State)
	require.NotNil(t, r.Settlement)
	assert.True(t, r.Settlement.NewBalance.IsZero())
	assert.Equal(t, 1, notifier.exhausted)

	// Terminal: resultados posteriores se ignoran sin liquidar
	r = eng.OnOutcome(ctx, 7)
	assert.Equal(t, engine.StateExhausted, r.State)
	assert.Nil(t, r.Settlement)
	require.Len(t, notifier.settled, 1)
}

func TestEngine_FallsBackWhenPredictorFails(t *testing.T) {
	pred := &mockPredictor{predErr: assert.AnError}
	eng, _, _ := newTestEngine(t, testConfig(), "top3", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	r := eng.OnOutcome(ctx, 3)

	// El ciclo no se rompe: predicción determinista por defecto
	require.NotNil(t, r.Settlement)
	assert.Equal(t, domain.DefaultPrediction(3), r.Settlement.Prediction)
}

func TestEngine_StorageFailureDoesNotBreakCycle(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	cfg := testConfig()
	notifier := &mockNotifier{}
	store := &mockRoundStorage{saveErr: assert.AnError}
	eng, err := engine.New(cfg, mustSpec(t, "top1"), "s", pred, nil, store, notifier)
	require.NoError(t, err)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	r := eng.OnOutcome(ctx, 7)

	require.NotNil(t, r.Settlement)
	assert.Len(t, notifier.settled, 1)
	assert.Equal(t, engine.StateActive, eng.State())
}

func TestEngine_DynamicStrategySizesPerRound(t *testing.T) {
	// topm con masa concentrada en un número: K = 1 esa ronda
	pred := &mockPredictor{scores: scoresFavoring(14)}
	eng, _, _ := newTestEngine(t, testConfig(), "topm", pred)
	ctx := context.Background()

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	r := eng.OnOutcome(ctx, 3)

	require.NotNil(t, r.Settlement)
	assert.Equal(t, domain.Prediction{14}, r.Settlement.Prediction)
}

func TestEngine_AutoTrainAfterEnoughHistory(t *testing.T) {
	cfg := testConfig()
	cfg.AutoTrain = true
	cfg.MinTrainHistory = 4

	pred := &mockPredictor{scores: scoresFavoring(7)}
	store := newMockModelStore()
	trainer := engine.NewTrainer(pred, store, "top1", cfg.WindowLength)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trainer.Start(ctx)

	notifier := &mockNotifier{}
	eng, err := engine.New(cfg, mustSpec(t, "top1"), "s", pred, trainer, nil, notifier)
	require.NoError(t, err)

	eng.OnOutcome(ctx, 1)
	eng.OnOutcome(ctx, 2)
	eng.OnOutcome(ctx, 3) // activa, pero historia 3 < 4: sin entrenamiento
	eng.OnOutcome(ctx, 4) // historia 4: encola

	require.Eventually(t, func() bool {
		return store.saved("top1")
	}, 2*time.Second, 5*time.Millisecond, "training never ran")

	cancel()
	trainer.Wait()
}

func TestEngine_RunConsumesFeedUntilClosed(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, notifier, _ := newTestEngine(t, testConfig(), "top1", pred)

	feed := newFakeFeed(1, 2, 7, 0, 7)
	err := eng.Run(context.Background(), feed)
	require.NoError(t, err)

	// 2 rondas de acumulación + 3 liquidadas, y el resumen final
	assert.Len(t, notifier.settled, 3)
	assert.Equal(t, 2, notifier.awaiting)
	assert.Equal(t, 1, notifier.summaries)
}

func TestEngine_RunStopsOnContextCancel(t *testing.T) {
	pred := &mockPredictor{scores: scoresFavoring(7)}
	eng, notifier, _ := newTestEngine(t, testConfig(), "top1", pred)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := &fakeFeed{out: make(chan domain.Outcome)}
	err := eng.Run(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.summaries)
}
