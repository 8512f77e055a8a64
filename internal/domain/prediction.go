package domain

import "sort"

// Prediction es el conjunto ordenado de resultados sobre los que la
// estrategia apuesta en la próxima ronda, de mayor a menor confianza.
type Prediction []Outcome

// Contains devuelve true si el resultado está entre los predichos.
func (p Prediction) Contains(o Outcome) bool {
	for _, c := range p {
		if c == o {
			return true
		}
	}
	return false
}

// TopK selecciona los k resultados con mayor score del vector dado
// (indexado por valor de Outcome). Determinista: empates resueltos por
// valor de resultado ascendente, independiente del orden de iteración
// de floats.
func TopK(scores []float64, k int) Prediction {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})

	pred := make(Prediction, k)
	for i := 0; i < k; i++ {
		pred[i] = Outcome(idx[i])
	}
	return pred
}

// DefaultPrediction devuelve la predicción de fallback cuando no hay
// historia suficiente: los k valores más bajos del alfabeto. Garantiza
// que el sistema siempre tiene una predicción válida sobre la que actuar.
func DefaultPrediction(k int) Prediction {
	if k <= 0 {
		return nil
	}
	if k > AlphabetSize {
		k = AlphabetSize
	}
	pred := make(Prediction, k)
	for i := 0; i < k; i++ {
		pred[i] = Outcome(i)
	}
	return pred
}
