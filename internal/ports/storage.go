package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// RoundStorage persiste el log acotado de rondas liquidadas.
type RoundStorage interface {
	// SaveRound persiste una ronda liquidada asociada a la sesión dada.
	SaveRound(ctx context.Context, sessionID string, r domain.SettlementResult) error

	// GetRounds devuelve las rondas de la sesión en el rango de tiempo dado,
	// en orden de liquidación.
	GetRounds(ctx context.Context, sessionID string, from, to time.Time) ([]domain.SettlementResult, error)

	// Close cierra la conexión limpiamente.
	Close() error
}
