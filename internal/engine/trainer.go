package engine

// trainer.go — reentrenamiento asíncrono con cola de un solo slot.
//
// El ciclo de decisión nunca se bloquea: el encolado es try-send sobre una
// cola de capacidad 1 con semántica drop-if-busy. El job entrena sobre un
// snapshot inmutable de la historia (tomado al encolar), así nunca compite
// con los appends del engine. El handoff del artefacto es un swap atómico
// dentro del Predictor; un fallo de entrenamiento se loggea y descarta,
// el artefacto anterior sigue activo.

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

// trainJob es un trabajo de reentrenamiento pendiente.
type trainJob struct {
	snapshot []domain.Outcome
}

// Trainer ejecuta jobs de reentrenamiento en background, como mucho uno
// en vuelo por estrategia.
type Trainer struct {
	predictor ports.Predictor
	store     ports.ModelStore
	modelKey  string
	window    int

	jobs chan trainJob
	busy atomic.Bool // true desde el encolado hasta que el job termina
	wg   sync.WaitGroup
}

// NewTrainer crea un Trainer para el predictor y la clave de modelo dados.
func NewTrainer(predictor ports.Predictor, store ports.ModelStore, modelKey string, window int) *Trainer {
	return &Trainer{
		predictor: predictor,
		store:     store,
		modelKey:  modelKey,
		window:    window,
		jobs:      make(chan trainJob, 1),
	}
}

// Start lanza el worker. Termina cuando el contexto se cancela; un job en
// vuelo se abandona vía contexto sin corromper el artefacto activo.
func (t *Trainer) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-t.jobs:
				t.run(ctx, job)
				t.busy.Store(false)
			}
		}
	}()
}

// Wait bloquea hasta que el worker haya terminado.
func (t *Trainer) Wait() {
	t.wg.Wait()
}

// TryEnqueue encola un job si no hay ninguno pendiente ni en vuelo.
// Devuelve false (no-op) si ya hay un job outstanding. Nunca bloquea.
func (t *Trainer) TryEnqueue(snapshot []domain.Outcome) bool {
	if !t.busy.CompareAndSwap(false, true) {
		return false
	}
	// El envío no puede bloquear: la cola tiene capacidad 1 y el flag busy
	// garantiza que está vacía en este punto.
	t.jobs <- trainJob{snapshot: snapshot}
	return true
}

// run ejecuta un job: construye ejemplos, entrena, instala y persiste.
// Cualquier fallo se absorbe aquí — nunca llega al ciclo de decisión.
func (t *Trainer) run(ctx context.Context, job trainJob) {
	examples := BuildExamples(job.snapshot, t.window)
	if len(examples) == 0 {
		slog.Debug("trainer: snapshot too short, skipping", "len", len(job.snapshot))
		return
	}

	artifact, err := t.predictor.Fit(ctx, examples)
	if err != nil {
		slog.Warn("trainer: fit failed, keeping previous artifact", "err", err)
		return
	}

	if err := t.predictor.Swap(artifact); err != nil {
		slog.Warn("trainer: swap rejected, keeping previous artifact", "err", err)
		return
	}

	blob, err := t.predictor.Encode(artifact)
	if err != nil {
		slog.Warn("trainer: encode failed, artifact active but not persisted", "err", err)
		return
	}
	if err := t.store.SaveModel(ctx, t.modelKey, blob); err != nil {
		slog.Warn("trainer: persist failed, artifact active but not persisted",
			"key", t.modelKey, "err", err)
		return
	}

	slog.Info("trainer: model updated",
		"key", t.modelKey,
		"examples", len(examples),
	)
}

// BuildExamples construye los ejemplos de entrenamiento deslizando una
// ventana de longitud window sobre el snapshot: cada ventana se empareja
// con el resultado inmediatamente posterior.
func BuildExamples(snapshot []domain.Outcome, window int) []ports.TrainingExample {
	if window <= 0 || len(snapshot) <= window {
		return nil
	}
	examples := make([]ports.TrainingExample, 0, len(snapshot)-window)
	for i := 0; i+window < len(snapshot); i++ {
		w := make([]domain.Outcome, window)
		copy(w, snapshot[i:i+window])
		examples = append(examples, ports.TrainingExample{
			Window: w,
			Next:   snapshot[i+window],
		})
	}
	return examples
}
