package predictor

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// artifact es el modelo entrenado: la matriz de conteos de transición
// resultado→resultado. Inmutable una vez instalado como activo — Fit
// siempre construye uno nuevo.
type artifact struct {
	key      string
	counts   *mat.Dense // AlphabetSize × AlphabetSize
	examples int64      // ejemplos acumulados en el entrenamiento
}

// newArtifact crea un artefacto sin entrenar (conteos a cero: con el
// suavizado aditivo, Predict devuelve la distribución uniforme).
func newArtifact(key string) *artifact {
	return &artifact{
		key:    key,
		counts: mat.NewDense(domain.AlphabetSize, domain.AlphabetSize, nil),
	}
}

// Key implementa ports.Artifact.
func (a *artifact) Key() string {
	return a.key
}

// artifactBlob es la forma serializada del artefacto.
type artifactBlob struct {
	Key      string    `msgpack:"key"`
	Alphabet int       `msgpack:"alphabet"`
	Counts   []float64 `msgpack:"counts"` // row-major
	Examples int64     `msgpack:"examples"`
}

// encode serializa el artefacto a msgpack.
func (a *artifact) encode() ([]byte, error) {
	raw := a.counts.RawMatrix()
	counts := make([]float64, len(raw.Data))
	copy(counts, raw.Data)

	blob, err := msgpack.Marshal(artifactBlob{
		Key:      a.key,
		Alphabet: domain.AlphabetSize,
		Counts:   counts,
		Examples: a.examples,
	})
	if err != nil {
		return nil, fmt.Errorf("predictor: encode artifact: %w", err)
	}
	return blob, nil
}

// decodeArtifact reconstruye un artefacto desde su blob persistido.
// Rechaza blobs malformados o de un alfabeto distinto — referencia de
// artefacto inválida es un error de configuración, fatal en el arranque.
func decodeArtifact(data []byte) (*artifact, error) {
	var blob artifactBlob
	if err := msgpack.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("predictor: decode artifact: %w", err)
	}
	if blob.Alphabet != domain.AlphabetSize {
		return nil, fmt.Errorf("predictor: artifact alphabet %d, want %d", blob.Alphabet, domain.AlphabetSize)
	}
	if len(blob.Counts) != domain.AlphabetSize*domain.AlphabetSize {
		return nil, fmt.Errorf("predictor: artifact has %d counts, want %d",
			len(blob.Counts), domain.AlphabetSize*domain.AlphabetSize)
	}

	return &artifact{
		key:      blob.Key,
		counts:   mat.NewDense(domain.AlphabetSize, domain.AlphabetSize, blob.Counts),
		examples: blob.Examples,
	}, nil
}
