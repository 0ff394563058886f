package glucose

// Direction is a Nightscout trend code.
type Direction string

const (
	DoubleUp      Direction = "DoubleUp"
	SingleUp      Direction = "SingleUp"
	FortyFiveUp   Direction = "FortyFiveUp"
	Flat          Direction = "Flat"
	FortyFiveDown Direction = "FortyFiveDown"
	SingleDown    Direction = "SingleDown"
	DoubleDown    Direction = "DoubleDown"
	NoDirection   Direction = "NONE"
)

// UnknownGlyph is shown for trend codes outside the known set.
const UnknownGlyph = "↛"

// Directions lists the known trend codes from fastest rise to fastest fall.
func Directions() []Direction {
	return []Direction{DoubleUp, SingleUp, FortyFiveUp, Flat, FortyFiveDown, SingleDown, DoubleDown, NoDirection}
}

// Glyph maps the trend code to a single display glyph.
func (d Direction) Glyph() string {
	switch d {
	case DoubleUp:
		return "⇈"
	case SingleUp:
		return "↑"
	case FortyFiveUp:
		return "↗"
	case Flat:
		return "→"
	case FortyFiveDown:
		return "↘"
	case SingleDown:
		return "↓"
	case DoubleDown:
		return "⇊"
	case NoDirection:
		return "⇼"
	default:
		return UnknownGlyph
	}
}

// Known reports whether d is one of the documented trend codes.
func (d Direction) Known() bool {
	switch d {
	case DoubleUp, SingleUp, FortyFiveUp, Flat, FortyFiveDown, SingleDown, DoubleDown, NoDirection:
		return true
	}
	return false
}

// Label returns a short human description of the trend.
func (d Direction) Label() string {
	switch d {
	case DoubleUp:
		return "rising fast"
	case SingleUp:
		return "rising"
	case FortyFiveUp:
		return "rising slowly"
	case Flat:
		return "steady"
	case FortyFiveDown:
		return "falling slowly"
	case SingleDown:
		return "falling"
	case DoubleDown:
		return "falling fast"
	case NoDirection:
		return "no trend"
	default:
		return "unknown trend"
	}
}
