package crystal

import "strconv"

type ValueKind int

const (
	StringKind ValueKind = iota
	NumberKind
)

// Value is the scalar every expression reduces to: either a UTF-8 string or a
// number. Literals stay strings until an arithmetic context coerces them.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

func StringValue(s string) Value {
	return Value{kind: StringKind, str: s}
}

func NumberValue(n float64) Value {
	return Value{kind: NumberKind, num: n}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNumber() bool {
	return v.kind == NumberKind
}

func (v Value) Number() float64 {
	return v.num
}

// String renders the value for display. Whole numbers print without a decimal
// point.
func (v Value) String() string {
	if v.kind == NumberKind {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}
