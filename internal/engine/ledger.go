package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/roulettebot/internal/domain"
)

// Ledger lleva el bankroll y los contadores de la sesión.
// La aritmética de liquidación es exacta (decimal, no float):
//
//	amountWon  = stake sobre el realizado × payoutRatio (0 si no hay apuesta)
//	newBalance = balance − totalStaked + amountWon
//
// Mutado únicamente por Settle, desde el ciclo serializado del engine.
type Ledger struct {
	stats  domain.SessionStats
	payout decimal.Decimal
}

// NewLedger crea un Ledger con el balance inicial y el ratio de pago dados.
func NewLedger(initialBalance, payoutRatio decimal.Decimal) *Ledger {
	return &Ledger{
		stats: domain.SessionStats{
			InitialBalance: initialBalance,
			Balance:        initialBalance,
		},
		payout: payoutRatio,
	}
}

// Settle liquida las apuestas de una ronda contra el resultado realizado
// y actualiza balance y contadores.
func (l *Ledger) Settle(realized domain.Outcome, pred domain.Prediction, wagers domain.WagerSet) domain.SettlementResult {
	totalStaked := wagers.Total()
	amountWon := wagers.StakeOn(realized).Mul(l.payout)

	l.stats.Balance = l.stats.Balance.Sub(totalStaked).Add(amountWon)
	l.stats.TotalRounds++
	won := amountWon.GreaterThan(decimal.Zero)
	if won {
		l.stats.CorrectRounds++
	}

	return domain.SettlementResult{
		Spin:        l.stats.TotalRounds,
		Realized:    realized,
		Prediction:  pred,
		Wagers:      wagers,
		TotalStaked: totalStaked,
		AmountWon:   amountWon,
		NewBalance:  l.stats.Balance,
		Won:         won,
		SettledAt:   time.Now().UTC(),
	}
}

// Stats devuelve las estadísticas agregadas actuales de la sesión.
func (l *Ledger) Stats() domain.SessionStats {
	return l.stats
}

// Balance devuelve el balance actual.
func (l *Ledger) Balance() decimal.Decimal {
	return l.stats.Balance
}
