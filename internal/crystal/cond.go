package crystal

// evalCondition reduces a condition to true/false. Numeric comparison is
// tried first; when either side will not coerce, the equality operators fall
// back to string comparison and the ordering operators report an error and
// yield false.
func (e *Evaluator) evalCondition(cond Condition) bool {
	switch c := cond.(type) {
	case *ExistsCond:
		return e.gw.Exists(e.resolvePath(c.Path))

	case *CompareCond:
		left := e.evalExpr(c.Left)
		right := e.evalExpr(c.Right)

		l, lerr := coerceNumber(left)
		r, rerr := coerceNumber(right)
		if lerr == nil && rerr == nil {
			switch c.Op {
			case CmpGreater:
				return l > r
			case CmpLess:
				return l < r
			case CmpEqual:
				return l == r
			}
			return false
		}

		if c.Op == CmpEqual {
			return left.String() == right.String()
		}
		e.printf("[ERROR] Cannot compare non-numeric values with %s\n", c.Op)
		return false
	}
	return false
}
