// Package formula evaluates per-cell arithmetic expressions against a
// sparse cell store.
//
// The expression language is intentionally minimal: the four binary
// operators with standard precedence, cell references (A1), column
// references bound to the current row (A), and numeric literals. There
// are no parentheses, no functions, no ranges, and no unary minus beyond
// a leading negative literal. Unresolvable or non-numeric references
// coerce to 0 rather than raising an error - a deliberate best-effort
// policy, not a defect.
package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tandemgrid/tandemgrid/internal/grid"
)

var referencePattern = regexp.MustCompile(`[A-Z]+\d*`)

// Evaluate resolves every reference in expr against cells, then reduces
// the resulting arithmetic expression. The current row binds bare column
// references ("A" with row 3 reads cell A3).
//
// The second return value is false when the expression cannot be reduced
// to a number at all; callers interpret that as "leave the cell unset".
func Evaluate(expr string, row int, cells grid.CellMap) (string, bool) {
	substituted := substituteReferences(expr, row, cells)
	v, ok := reduce(substituted)
	if !ok {
		return "", false
	}
	return formatNumber(v), true
}

// substituteReferences replaces each reference token with its resolved
// numeric value. Replacement is textual with word boundaries so that a
// column "A" does not clobber the "A" inside "A1".
func substituteReferences(expr string, row int, cells grid.CellMap) string {
	refs := referencePattern.FindAllString(expr, -1)
	for _, ref := range refs {
		v := resolveReference(ref, row, cells)
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(ref) + `\b`)
		expr = pattern.ReplaceAllString(expr, formatNumber(v))
	}
	return expr
}

// resolveReference turns one token into a number. A token with trailing
// digits is a full cell reference; letters alone name a column in the
// current row. Anything missing or non-numeric resolves to 0.
func resolveReference(ref string, row int, cells grid.CellMap) float64 {
	id := ref
	if !strings.ContainsAny(ref, "0123456789") {
		id = grid.MakeCellID(ref, row)
	}
	cell, ok := cells[id]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(cell.Value, 64)
	if err != nil {
		return 0
	}
	return v
}

// reduce evaluates the substituted expression: every * and / first,
// scanning left to right, then every + and -. Each step consumes the
// nearest numeric operand on each side of the operator. This mirrors a
// recursive-descent result without building a parse tree.
func reduce(expr string) (float64, bool) {
	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return 0, false
	}

	expr = reducePass(expr, "*/")
	expr = reducePass(expr, "+-")

	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		// Inf/NaN survive ParseFloat; anything else is unevaluable.
		return 0, false
	}
	return v, true
}

// reducePass repeatedly applies the leftmost operator from ops until no
// operator of that precedence tier remains.
func reducePass(expr string, ops string) string {
	for {
		opIndex := -1
		// Position 0 is never an operator: a leading - belongs to a
		// negative literal.
		for i := 1; i < len(expr); i++ {
			if strings.ContainsRune(ops, rune(expr[i])) && isOperandByte(expr[i-1]) {
				opIndex = i
				break
			}
		}
		if opIndex == -1 {
			return expr
		}

		leftStart := opIndex - 1
		for leftStart > 0 && isOperandByte(expr[leftStart-1]) {
			leftStart--
		}
		rightEnd := opIndex + 1
		if rightEnd < len(expr) && expr[rightEnd] == '-' {
			rightEnd++ // negative right operand
		}
		for rightEnd < len(expr) && isOperandByte(expr[rightEnd]) {
			rightEnd++
		}

		left, errL := strconv.ParseFloat(expr[leftStart:opIndex], 64)
		right, errR := strconv.ParseFloat(expr[opIndex+1:rightEnd], 64)
		if errL != nil || errR != nil {
			return expr // leave unreducible text for the final parse to reject
		}

		var result float64
		switch expr[opIndex] {
		case '*':
			result = left * right
		case '/':
			result = left / right
		case '+':
			result = left + right
		case '-':
			result = left - right
		}

		expr = expr[:leftStart] + formatNumber(result) + expr[rightEnd:]
	}
}

// isOperandByte reports whether b can appear inside a numeric operand.
// Inf and NaN spellings are included so division-by-zero results keep
// reducing through later passes.
func isOperandByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == '.':
		return true
	}
	return strings.IndexByte("InfinityNa", b) >= 0
}

// formatNumber prints a float the way the stored cell values expect:
// no exponent, no trailing zeros, and the Infinity/NaN spellings used
// by every client of the shared store.
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
