package feed

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// Simulated implementa ports.OutcomeFeed con un generador uniforme sobre
// el alfabeto, con el mismo contrato de entrega que el feed en vivo.
// Se usa como fallback cuando el WebSocket no está disponible y para
// pruebas sin conexión.
type Simulated struct {
	out     chan domain.Outcome
	limiter *rate.Limiter // cadencia entre spins simulados
	rng     *rand.Rand
	spins   int // 0 = ilimitado
}

// NewSimulated crea un feed simulado que emite un resultado cada
// spinsPerSecond⁻¹. Con seed != 0 la secuencia es reproducible.
// spins limita el número total de resultados (0 = sin límite).
func NewSimulated(spinsPerSecond float64, seed uint64, spins int) *Simulated {
	if spinsPerSecond <= 0 {
		spinsPerSecond = 0.2 // un spin cada 5s, el ritmo de una mesa real
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulated{
		out:     make(chan domain.Outcome),
		limiter: rate.NewLimiter(rate.Limit(spinsPerSecond), 1),
		rng:     rng,
		spins:   spins,
	}
}

// Outcomes devuelve el canal de resultados.
func (s *Simulated) Outcomes() <-chan domain.Outcome {
	return s.out
}

// Run genera resultados hasta que el contexto se cancele o se alcance el
// límite de spins. Cierra el canal al terminar.
func (s *Simulated) Run(ctx context.Context) error {
	defer close(s.out)

	slog.Info("simulated feed starting", "spins", s.spins)
	for i := 0; s.spins == 0 || i < s.spins; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil // contexto cancelado
		}

		outcome := domain.Outcome(s.rng.IntN(domain.AlphabetSize))
		select {
		case <-ctx.Done():
			return nil
		case s.out <- outcome:
		}
	}
	return nil
}
