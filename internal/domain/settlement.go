package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult es el resultado de liquidar las apuestas de una ronda
// contra el número realizado. Efímero: se produce y consume por ciclo,
// se retiene solo en contadores agregados y en el log acotado de rondas.
type SettlementResult struct {
	Spin        int64 // número de ronda liquidada (1-based)
	Realized    Outcome
	Prediction  Prediction
	Wagers      WagerSet
	TotalStaked decimal.Decimal
	AmountWon   decimal.Decimal // 0 salvo que Realized ∈ Wagers
	NewBalance  decimal.Decimal
	Won         bool
	SettledAt   time.Time
}

// Net devuelve el resultado neto de la ronda (ganado - apostado).
func (r SettlementResult) Net() decimal.Decimal {
	return r.AmountWon.Sub(r.TotalStaked)
}

// SessionStats son las estadísticas agregadas de una sesión de estrategia,
// recalculadas de forma consistente tras cada liquidación.
type SessionStats struct {
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	TotalRounds    int64
	CorrectRounds  int64
}

// WinRate devuelve el porcentaje de rondas acertadas (0-100).
func (s SessionStats) WinRate() float64 {
	if s.TotalRounds == 0 {
		return 0
	}
	return float64(s.CorrectRounds) / float64(s.TotalRounds) * 100
}

// ROI devuelve el retorno porcentual sobre el balance inicial.
func (s SessionStats) ROI() float64 {
	if s.InitialBalance.IsZero() {
		return 0
	}
	diff, _ := s.Balance.Sub(s.InitialBalance).Float64()
	initial, _ := s.InitialBalance.Float64()
	return diff / initial * 100
}

// Exhausted devuelve true si el bankroll está agotado (estado terminal).
func (s SessionStats) Exhausted() bool {
	return s.Balance.LessThanOrEqual(decimal.Zero)
}
