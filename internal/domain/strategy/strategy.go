// Package strategy define el catálogo cerrado de estrategias de apuesta.
//
// Sustituye la selección dinámica por nombre (lookup de clase en runtime)
// por una enumeración cerrada con registro: cada variante declara cuántos
// números cubre y si decide K dinámicamente. Sin reflection, sin dispatch
// por strings más allá del lookup inicial de configuración.
package strategy

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy indica un nombre de estrategia fuera del catálogo.
// Es un error de configuración: fatal en el arranque, nunca en el ciclo.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind identifica una variante del catálogo.
type Kind string

const (
	Top1  Kind = "top1"
	Top3  Kind = "top3"
	Top18 Kind = "top18"
	TopM  Kind = "topm" // K dinámico según distribución de scores
)

// Spec describe una variante de estrategia del catálogo.
type Spec struct {
	Kind             Kind
	DisplayName      string
	Description      string
	RiskLevel        string
	NumbersToPredict int  // 0 si Dynamic
	Dynamic          bool // K decidido por cobertura de score en cada ronda
	TargetWinRate    float64
	ModelKey         string // clave del artefacto de modelo persistido
}

// catalog es el registro cerrado de variantes.
var catalog = []Spec{
	{
		Kind:             Top1,
		DisplayName:      "Top-1 Single Number",
		Description:      "Highest risk/reward - predicts single most likely number",
		RiskLevel:        "High",
		NumbersToPredict: 1,
		TargetWinRate:    2.71,
		ModelKey:         "top1",
	},
	{
		Kind:             Top3,
		DisplayName:      "Top-3 Numbers",
		Description:      "Medium risk - predicts top 3 most likely numbers",
		RiskLevel:        "Medium",
		NumbersToPredict: 3,
		TargetWinRate:    8.11,
		ModelKey:         "top3",
	},
	{
		Kind:             Top18,
		DisplayName:      "Top-18 Numbers",
		Description:      "Lower risk - covers half the wheel",
		RiskLevel:        "Low",
		NumbersToPredict: 18,
		TargetWinRate:    48.65,
		ModelKey:         "top18",
	},
	{
		Kind:        TopM,
		DisplayName: "Top-M Dynamic",
		Description: "Adaptive strategy based on confidence levels",
		RiskLevel:   "Variable",
		Dynamic:     true,
		ModelKey:    "topm",
	},
}

// Lookup devuelve la Spec para el nombre dado.
// Devuelve ErrUnknownStrategy si el nombre no está en el catálogo.
func Lookup(name string) (Spec, error) {
	for _, s := range catalog {
		if string(s.Kind) == name {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("strategy.Lookup: %q: %w", name, ErrUnknownStrategy)
}

// All devuelve el catálogo completo en orden estable.
func All() []Spec {
	out := make([]Spec, len(catalog))
	copy(out, catalog)
	return out
}
