package ports

import (
	"context"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// TrainingExample es un par (ventana, resultado siguiente) para entrenar.
type TrainingExample struct {
	Window []domain.Outcome
	Next   domain.Outcome
}

// Artifact es un handle opaco a un modelo entrenado. Su representación
// interna pertenece al adapter de predicción; el resto del sistema solo
// lo transporta e instala.
type Artifact interface {
	// Key es la clave de persistencia del artefacto (por estrategia).
	Key() string
}

// Predictor envuelve la capacidad de predicción del modelo.
//
// Predict lee el artefacto activo; Fit produce uno nuevo sin tocar el
// activo; Swap lo instala de forma atómica. Una predicción en curso no
// se ve afectada por un Swap concurrente: termina contra el artefacto
// con el que empezó.
type Predictor interface {
	// Predict devuelve un vector de scores indexado por valor de Outcome,
	// de longitud domain.AlphabetSize. Los scores suman ~1, pero cualquier
	// scoring monótono sirve para el top-K.
	Predict(ctx context.Context, window []domain.Outcome) ([]float64, error)

	// Fit entrena un artefacto de reemplazo a partir de los ejemplos dados.
	Fit(ctx context.Context, examples []TrainingExample) (Artifact, error)

	// Swap instala el artefacto como activo. Todo-o-nada: ninguna
	// predicción observa un artefacto a medio escribir.
	Swap(a Artifact) error

	// Encode serializa el artefacto para persistirlo como blob opaco.
	Encode(a Artifact) ([]byte, error)
}
