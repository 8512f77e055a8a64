package domain

// AlphabetSize es el tamaño del alfabeto de resultados de la ruleta europea
// (0..36).
const AlphabetSize = 37

// Outcome es un resultado realizado de la ruleta, en [0, AlphabetSize).
// Inmutable una vez observado.
type Outcome int

// Valid devuelve true si el resultado está dentro del alfabeto.
func (o Outcome) Valid() bool {
	return o >= 0 && o < AlphabetSize
}

// Color es el color de un número de la ruleta.
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// redNumbers son los números rojos de la ruleta europea.
var redNumbers = map[Outcome]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

// Color devuelve el color del número: verde para el 0, rojo o negro
// para el resto según la distribución estándar de la rueda.
func (o Outcome) Color() Color {
	switch {
	case o == 0:
		return ColorGreen
	case redNumbers[o]:
		return ColorRed
	default:
		return ColorBlack
	}
}
