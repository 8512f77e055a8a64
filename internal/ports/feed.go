package ports

import (
	"context"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// OutcomeFeed entrega resultados de la ruleta según ocurren.
//
// Modelo de suscripción explícito por canal: el feed empuja resultados y
// el StrategyEngine los consume en su propio loop serializado, con
// semántica clara de orden y backpressure. Garantía: como mucho una
// entrega en vuelo (el canal se alimenta desde una única goroutine).
type OutcomeFeed interface {
	// Outcomes devuelve el canal de resultados. Se cierra cuando Run termina.
	Outcomes() <-chan domain.Outcome

	// Run mantiene la fuente (conexión o generador) hasta que el contexto
	// se cancele. Los fallos de transporte se resuelven dentro del feed;
	// el engine nunca los ve.
	Run(ctx context.Context) error
}
