package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/roulettebot/internal/domain"
	"github.com/alejandrodnm/roulettebot/internal/domain/strategy"
)

// stakePrecision es la precisión a la que se truncan los stakes.
// Truncar (no redondear) garantiza que stake×K nunca supera el total.
const stakePrecision = 12

// maxDynamicK limita el K dinámico a media rueda.
const maxDynamicK = domain.AlphabetSize / 2

// WagerPolicy convierte una predicción rankeada en un conjunto de
// apuestas dimensionadas según la variante de estrategia.
type WagerPolicy struct {
	spec            strategy.Spec
	bettingFraction decimal.Decimal
	perUnitCap      decimal.Decimal
	coverage        float64 // umbral de masa de score para el K dinámico
}

// NewWagerPolicy crea la política de apuestas para la variante dada.
func NewWagerPolicy(spec strategy.Spec, bettingFraction, perUnitCap decimal.Decimal, coverage float64) *WagerPolicy {
	if coverage <= 0 || coverage > 1 {
		coverage = 0.5
	}
	return &WagerPolicy{
		spec:            spec,
		bettingFraction: bettingFraction,
		perUnitCap:      perUnitCap,
		coverage:        coverage,
	}
}

// PredictionSize decide cuántos números cubrir en esta ronda.
// Variantes fijas: el K del catálogo. Variante dinámica: el menor K cuya
// masa de score acumulada (descendente) alcanza el umbral de cobertura,
// acotado a [1, maxDynamicK].
func (p *WagerPolicy) PredictionSize(scores []float64) int {
	if !p.spec.Dynamic {
		return p.spec.NumbersToPredict
	}
	if len(scores) == 0 {
		return 1
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var mass float64
	k := 0
	for _, s := range sorted {
		mass += s
		k++
		if mass >= p.coverage || k >= maxDynamicK {
			break
		}
	}
	if k < 1 {
		k = 1
	}
	return k
}

// Size reparte el stake total entre los números predichos, a partes
// iguales. totalStake = min(balance × bettingFraction, perUnitCap × K).
//
// Garantías: total ≤ balance; cada stake > 0 siempre que balance > 0
// (hasta la precisión representable). Con balance ≤ 0 o predicción vacía
// devuelve un WagerSet vacío.
func (p *WagerPolicy) Size(pred domain.Prediction, balance decimal.Decimal) domain.WagerSet {
	if len(pred) == 0 || balance.LessThanOrEqual(decimal.Zero) {
		return domain.WagerSet{}
	}

	k := decimal.NewFromInt(int64(len(pred)))
	total := decimal.Min(
		balance.Mul(p.bettingFraction),
		p.perUnitCap.Mul(k),
	)
	// No apostar más de lo que se tiene, por si bettingFraction > 1.
	total = decimal.Min(total, balance)

	stake := total.Div(k).Truncate(stakePrecision)
	if stake.LessThanOrEqual(decimal.Zero) {
		return domain.WagerSet{}
	}

	wagers := make(domain.WagerSet, len(pred))
	for _, o := range pred {
		wagers[o] = stake
	}
	return wagers
}
