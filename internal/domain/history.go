package domain

// DefaultHistoryCap es la retención máxima de resultados por defecto.
const DefaultHistoryCap = 1000

// History es el buffer acotado y ordenado de resultados pasados.
// Append-only en tiempo lógico: al superar la capacidad se descartan
// los resultados más antiguos. Implementado como ring buffer para evitar
// realocaciones al truncar.
//
// No es seguro para uso concurrente — pertenece a un único StrategyEngine;
// los lectores concurrentes (Trainer) trabajan sobre Snapshot().
type History struct {
	buf   []Outcome
	start int // índice del elemento más antiguo
	size  int
}

// NewHistory crea un History con la capacidad dada.
// Si cap <= 0 usa DefaultHistoryCap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{buf: make([]Outcome, capacity)}
}

// Append añade un resultado al final, descartando el más antiguo si el
// buffer está lleno. O(1), nunca falla.
func (h *History) Append(o Outcome) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = o
		h.size++
		return
	}
	// Lleno: sobreescribir el más antiguo y avanzar el inicio.
	h.buf[h.start] = o
	h.start = (h.start + 1) % len(h.buf)
}

// Len devuelve el número de resultados retenidos.
func (h *History) Len() int {
	return h.size
}

// Cap devuelve la retención máxima.
func (h *History) Cap() int {
	return len(h.buf)
}

// Snapshot devuelve una copia inmutable en orden lógico (más antiguo
// primero), segura para lectura concurrente mientras el engine sigue
// añadiendo al original.
func (h *History) Snapshot() []Outcome {
	out := make([]Outcome, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Window devuelve los últimos n resultados en orden lógico.
// Devuelve false si no hay suficiente historia.
func (h *History) Window(n int) ([]Outcome, bool) {
	if n <= 0 || h.size < n {
		return nil, false
	}
	out := make([]Outcome, n)
	first := h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.buf[(h.start+first+i)%len(h.buf)]
	}
	return out, true
}
