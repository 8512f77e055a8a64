package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/engine"
)

func TestBuildExamples(t *testing.T) {
	snapshot := []domain.Outcome{1, 2, 3, 4, 5}

	examples := engine.BuildExamples(snapshot, 3)
	require.Len(t, examples, 2)

	assert.Equal(t, []domain.Outcome{1, 2, 3}, examples[0].Window)
	assert.Equal(t, domain.Outcome(4), examples[0].Next)
	assert.Equal(t, []domain.Outcome{2, 3, 4}, examples[1].Window)
	assert.Equal(t, domain.Outcome(5), examples[1].Next)
}

func TestBuildExamples_InsufficientHistory(t *testing.T) {
	assert.Empty(t, engine.BuildExamples([]domain.Outcome{1, 2, 3}, 3))
	assert.Empty(t, engine.BuildExamples(nil, 3))
	assert.Empty(t, engine.BuildExamples([]domain.Outcome{1, 2, 3}, 0))
}

func TestBuildExamples_CopiesWindows(t *testing.T) {
	snapshot := []domain.Outcome{1, 2, 3, 4}
	examples := engine.BuildExamples(snapshot, 2)

	snapshot[1] = 99
	assert.Equal(t, []domain.Outcome{1, 2}, examples[0].Window)
}

func TestTrainer_SingleOutstandingJob(t *testing.T) {
	pred := &mockPredictor{}
	trainer := engine.NewTrainer(pred, newMockModelStore(), "top1", 2)

	// Sin worker corriendo: el primer encolado ocupa el slot, el segundo
	// es un no-op.
	assert.True(t, trainer.TryEnqueue([]domain.Outcome{1, 2, 3}))
	assert.False(t, trainer.TryEnqueue([]domain.Outcome{1, 2, 3}))
}

func TestTrainer_TrainsAndPersists(t *testing.T) {
	pred := &mockPredictor{}
	store := newMockModelStore()
	trainer := engine.NewTrainer(pred, store, "top1", 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trainer.Start(ctx)

	require.True(t, trainer.TryEnqueue([]domain.Outcome{1, 2, 3, 4}))

	require.Eventually(t, func() bool {
		return store.saved("top1")
	}, 2*time.Second, 5*time.Millisecond, "model was never persisted")

	fit, swap := pred.stats()
	assert.Equal(t, 1, fit)
	assert.Equal(t, 1, swap)

	// Terminado el job, el slot vuelve a estar libre
	require.Eventually(t, func() bool {
		return trainer.TryEnqueue([]domain.Outcome{1, 2, 3, 4})
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	trainer.Wait()
}

func TestTrainer_FitFailureKeepsPreviousArtifact(t *testing.T) {
	pred := &mockPredictor{fitErr: assert.AnError}
	store := newMockModelStore()
	trainer := engine.NewTrainer(pred, store, "top1", 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trainer.Start(ctx)

	require.True(t, trainer.TryEnqueue([]domain.Outcome{1, 2, 3, 4}))

	// El fallo se absorbe: no hay swap, no hay persistencia, y el slot
	// se libera para el siguiente intento.
	require.Eventually(t, func() bool {
		return trainer.TryEnqueue([]domain.Outcome{1, 2, 3, 4})
	}, 2*time.Second, 5*time.Millisecond)

	_, swap := pred.stats()
	assert.Zero(t, swap)
	assert.False(t, store.saved("top1"))

	cancel()
	trainer.Wait()
}

func TestTrainer_ShortSnapshotIsNoop(t *testing.T) {
	pred := &mockPredictor{}
	store := newMockModelStore()
	trainer := engine.NewTrainer(pred, store, "top1", 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trainer.Start(ctx)

	require.True(t, trainer.TryEnqueue([]domain.Outcome{1, 2, 3}))

	require.Eventually(t, func() bool {
		return trainer.TryEnqueue([]domain.Outcome{1, 2, 3})
	}, 2*time.Second, 5*time.Millisecond)

	fit, _ := pred.stats()
	assert.Zero(t, fit)

	cancel()
	trainer.Wait()
}
