package glucose

import (
	"fmt"
	"strconv"
	"strings"
)

// MgdlPerMmol is the conversion factor between mg/dL and mmol/L.
const MgdlPerMmol = 18.0

// Unit selects how a reading value is displayed.
type Unit int

const (
	UnitMmol Unit = iota
	UnitMgdl
)

// ParseUnit accepts the common spellings of both units.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mmol", "mmol/l", "mmoll":
		return UnitMmol, nil
	case "mgdl", "mg/dl", "mg":
		return UnitMgdl, nil
	default:
		return UnitMmol, fmt.Errorf("invalid unit %q (allowed: mmol, mgdl)", s)
	}
}

func (u Unit) String() string {
	if u == UnitMgdl {
		return "mg/dL"
	}
	return "mmol/L"
}

// ToMmol converts a mg/dL value to mmol/L without rounding.
func ToMmol(mgdl int) float64 {
	return float64(mgdl) / MgdlPerMmol
}

// FormatMmol renders the mmol/L equivalent of mgdl to one decimal place.
func FormatMmol(mgdl int) string {
	return strconv.FormatFloat(ToMmol(mgdl), 'f', 1, 64)
}

// FormatMgdl renders a raw mg/dL value.
func FormatMgdl(mgdl int) string {
	return strconv.Itoa(mgdl)
}
