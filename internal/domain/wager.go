package domain

import "github.com/shopspring/decimal"

// WagerSet es el mapeo de resultado predicho → stake comprometido.
// Invariante: cada stake > 0 y la suma total nunca supera el balance
// en el momento de apostar.
type WagerSet map[Outcome]decimal.Decimal

// Total devuelve la suma de todos los stakes.
func (w WagerSet) Total() decimal.Decimal {
	total := decimal.Zero
	for _, stake := range w {
		total = total.Add(stake)
	}
	return total
}

// StakeOn devuelve el stake sobre el resultado dado, o cero si no hay
// apuesta sobre él.
func (w WagerSet) StakeOn(o Outcome) decimal.Decimal {
	if stake, ok := w[o]; ok {
		return stake
	}
	return decimal.Zero
}
