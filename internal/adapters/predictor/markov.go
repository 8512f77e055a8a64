// Package predictor implementa ports.Predictor con un modelo de
// frecuencias condicionales (cadena de Markov de orden 1) con suavizado
// aditivo sobre el alfabeto de la ruleta.
//
// El artefacto activo vive detrás de un atomic.Pointer: Predict carga el
// puntero una vez y trabaja contra ese artefacto hasta terminar, así un
// Swap concurrente nunca lo afecta y jamás se observa un artefacto a
// medio escribir.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/ports"
)

// defaultSmoothing es el suavizado aditivo por defecto: garantiza score
// > 0 para todo resultado aunque nunca se haya observado.
const defaultSmoothing = 0.5

// Markov es el adapter de predicción. Implementa ports.Predictor.
type Markov struct {
	key       string
	smoothing float64
	active    atomic.Pointer[artifact]
}

// Open crea un Markov para la clave de modelo dada, cargando el artefacto
// persistido si existe o inicializando uno sin entrenar si no.
func Open(ctx context.Context, store ports.ModelStore, key string) (*Markov, error) {
	m := &Markov{key: key, smoothing: defaultSmoothing}

	blob, err := store.LoadModel(ctx, key)
	switch {
	case errors.Is(err, ports.ErrModelNotFound):
		slog.Info("no persisted model, starting untrained", "key", key)
		m.active.Store(newArtifact(key))
	case err != nil:
		return nil, fmt.Errorf("predictor.Open: load %q: %w", key, err)
	default:
		art, err := decodeArtifact(blob)
		if err != nil {
			return nil, fmt.Errorf("predictor.Open: decode %q: %w", key, err)
		}
		slog.Info("loaded persisted model", "key", key, "examples", art.examples)
		m.active.Store(art)
	}

	return m, nil
}

// Predict devuelve la distribución de scores sobre el alfabeto dada la
// ventana: la fila de transiciones del último resultado observado, con
// suavizado aditivo y normalizada a masa 1.
func (m *Markov) Predict(_ context.Context, window []domain.Outcome) ([]float64, error) {
	if len(window) == 0 {
		return nil, fmt.Errorf("predictor.Predict: empty window")
	}
	last := window[len(window)-1]
	if !last.Valid() {
		return nil, fmt.Errorf("predictor.Predict: outcome %d outside alphabet", int(last))
	}

	art := m.active.Load()

	scores := mat.Row(nil, int(last), art.counts)
	floats.AddConst(m.smoothing, scores)
	floats.Scale(1/floats.Sum(scores), scores)
	return scores, nil
}

// Fit entrena un artefacto nuevo desde cero con los ejemplos dados.
// No toca el artefacto activo; el llamante decide cuándo instalarlo.
func (m *Markov) Fit(ctx context.Context, examples []ports.TrainingExample) (ports.Artifact, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("predictor.Fit: no examples")
	}

	art := newArtifact(m.key)
	for i, ex := range examples {
		// Cooperar con la cancelación en snapshots grandes.
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("predictor.Fit: %w", ctx.Err())
			default:
			}
		}

		if len(ex.Window) == 0 || !ex.Next.Valid() {
			continue
		}
		last := ex.Window[len(ex.Window)-1]
		if !last.Valid() {
			continue
		}
		art.counts.Set(int(last), int(ex.Next), art.counts.At(int(last), int(ex.Next))+1)
		art.examples++
	}

	if art.examples == 0 {
		return nil, fmt.Errorf("predictor.Fit: no valid examples")
	}
	return art, nil
}

// Swap instala el artefacto como activo con un único store atómico.
func (m *Markov) Swap(a ports.Artifact) error {
	art, ok := a.(*artifact)
	if !ok {
		return fmt.Errorf("predictor.Swap: foreign artifact %T", a)
	}
	if art.key != m.key {
		return fmt.Errorf("predictor.Swap: artifact key %q does not match %q", art.key, m.key)
	}
	m.active.Store(art)
	return nil
}

// Encode serializa el artefacto para persistirlo.
func (m *Markov) Encode(a ports.Artifact) ([]byte, error) {
	art, ok := a.(*artifact)
	if !ok {
		return nil, fmt.Errorf("predictor.Encode: foreign artifact %T", a)
	}
	return art.encode()
}

// Active devuelve el artefacto activo actual.
func (m *Markov) Active() ports.Artifact {
	return m.active.Load()
}
