// Package units normalizes quantities between display units and base units.
// Weight is the only dimension with a real conversion (kg <-> g); every other
// unit is treated as its own base so mixed catalogs never lose precision.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Normalize canonicalizes a unit label for comparison.
func Normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// ToBase converts a quantity into its base unit. Kilograms become grams;
// any other unit passes through unchanged and is its own base.
func ToBase(qty decimal.Decimal, unit string) (decimal.Decimal, string) {
	switch Normalize(unit) {
	case "kg":
		return qty.Mul(thousand), "g"
	default:
		return qty, Normalize(unit)
	}
}

// FromBase converts a base quantity back into the target unit. Only the
// g -> kg direction scales; everything else passes through.
func FromBase(qty decimal.Decimal, baseUnit, targetUnit string) decimal.Decimal {
	if Normalize(baseUnit) == "g" && Normalize(targetUnit) == "kg" {
		return qty.Div(thousand)
	}
	return qty
}

// Comparable reports whether two units can be reconciled against the same
// base, either directly or through the weight conversion.
func Comparable(a, b string) bool {
	_, baseA := ToBase(decimal.Zero, a)
	_, baseB := ToBase(decimal.Zero, b)
	return baseA == baseB
}
