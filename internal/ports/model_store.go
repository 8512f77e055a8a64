package ports

import (
	"context"
	"errors"
)

// ErrModelNotFound indica que no existe artefacto persistido con esa clave.
// No es fatal: el Predictor arranca con un artefacto sin entrenar.
var ErrModelNotFound = errors.New("model not found")

// ModelStore persiste artefactos de modelo como blobs opacos por clave.
type ModelStore interface {
	// LoadModel devuelve el blob del artefacto, o ErrModelNotFound.
	LoadModel(ctx context.Context, key string) ([]byte, error)

	// SaveModel persiste (o reemplaza) el blob del artefacto.
	SaveModel(ctx context.Context, key string, blob []byte) error
}
