package crystal

import (
	"math"
	"strconv"
	"strings"
)

// evalExpr reduces an expression tree. Operator nodes coerce both sides to
// numbers; leaves pass through the resolver untouched, so a bare literal keeps
// its string form.
func (e *Evaluator) evalExpr(expr Expr) Value {
	b, ok := expr.(*BinaryExpr)
	if !ok {
		return e.resolve(expr)
	}

	left := e.toNumber(e.evalExpr(b.Left))
	right := e.toNumber(e.evalExpr(b.Right))

	switch b.Op {
	case OpAdd:
		return NumberValue(left + right)
	case OpSubtract:
		return NumberValue(left - right)
	case OpMultiply:
		return NumberValue(left * right)
	case OpDivide:
		if right == 0 {
			e.printf("[ERROR] Division by zero\n")
			return NumberValue(0)
		}
		return NumberValue(left / right)
	case OpModulo:
		if right == 0 {
			e.printf("[ERROR] Division by zero\n")
			return NumberValue(0)
		}
		return NumberValue(math.Mod(left, right))
	}
	return NumberValue(0)
}

// toNumber applies the non-fatal coercion rule: failures are reported and
// substitute zero instead of aborting the expression.
func (e *Evaluator) toNumber(v Value) float64 {
	n, err := coerceNumber(v)
	if err != nil {
		e.printf("[ERROR] Cannot convert '%s' to number\n", v.String())
		return 0
	}
	return n
}

// coerceNumber parses a value as a float when a decimal point is present,
// otherwise as an integer.
func coerceNumber(v Value) (float64, error) {
	if v.IsNumber() {
		return v.Number(), nil
	}
	s := strings.TrimSpace(v.String())
	if strings.Contains(s, ".") {
		return strconv.ParseFloat(s, 64)
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return float64(i), err
}
