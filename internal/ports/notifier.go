package ports

import (
	"context"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// Notifier presenta los resultados de cada ronda al usuario.
// El engine solo emite resultados estructurados; el formato es cosa
// de la implementación (consola, log, etc).
type Notifier interface {
	// RoundSettled presenta una ronda liquidada con las stats de la sesión.
	RoundSettled(ctx context.Context, result domain.SettlementResult, stats domain.SessionStats) error

	// AwaitingHistory avisa de que aún no hay historia suficiente.
	AwaitingHistory(ctx context.Context, have, need int) error

	// Exhausted avisa de que el bankroll se agotó (estado terminal).
	Exhausted(ctx context.Context, stats domain.SessionStats) error

	// Summary presenta el resumen final de la sesión.
	Summary(ctx context.Context, stats domain.SessionStats) error
}
