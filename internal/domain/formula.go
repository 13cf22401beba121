package domain

import "fmt"

// FormulaKind identifies one of the closed set of cost/profit curves the
// game database uses. Unknown kinds are rejected at load time rather than
// silently defaulted.
type FormulaKind string

const (
	FormulaLinear      FormulaKind = "linear"
	FormulaQuadratic   FormulaKind = "quadratic"
	FormulaCubic       FormulaKind = "cubic"
	FormulaExponential FormulaKind = "exponential"
	FormulaLogarithmic FormulaKind = "logarithmic"
	FormulaCompound    FormulaKind = "compound"
	FormulaPayback     FormulaKind = "payback"
)

// formulaNames maps the raw strings carried by the game database to kinds.
var formulaNames = map[string]FormulaKind{
	"fnLinear":      FormulaLinear,
	"fnQuadratic":   FormulaQuadratic,
	"fnCubic":       FormulaCubic,
	"fnExponential": FormulaExponential,
	"fnLogarithmic": FormulaLogarithmic,
	"fnCompound":    FormulaCompound,
	"fnPayback":     FormulaPayback,
}

// ParseFormulaKind converts a raw formula name from the game database into a
// FormulaKind. An empty name is treated as linear (some records omit the
// profit formula); anything else unknown is an error.
func ParseFormulaKind(raw string) (FormulaKind, error) {
	if raw == "" {
		return FormulaLinear, nil
	}
	kind, ok := formulaNames[raw]
	if !ok {
		return "", fmt.Errorf("unknown formula kind %q", raw)
	}
	return kind, nil
}
