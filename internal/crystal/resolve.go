package crystal

import (
	"sort"
	"strings"
)

// resolve reduces a leaf node to a Value. Unresolved variable references never
// raise; they yield a marker string instead. Number and path tokens stay
// strings until an arithmetic context coerces them.
func (e *Evaluator) resolve(expr Expr) Value {
	switch v := expr.(type) {
	case *VariableRef:
		if val, ok := e.ctx.Get(v.Name); ok {
			return val
		}
		return StringValue("[UNDEFINED: " + v.Name + "]")
	case *StringLit:
		return StringValue(e.interpolate(v.Text))
	case *NumberLit:
		return StringValue(v.Text)
	case *PathLit:
		return StringValue(v.Text)
	case *BinaryExpr:
		return e.evalExpr(v)
	}
	return StringValue("")
}

// interpolate replaces every 'name' substring bound in the merged scopes
// (locals winning) with the variable's string form. Names are substituted in
// sorted order so the result is stable when one value contains another quoted
// name. Unbound 'name' substrings stay verbatim.
func (e *Evaluator) interpolate(text string) string {
	if !strings.Contains(text, "'") {
		return text
	}
	bindings := e.ctx.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		text = strings.ReplaceAll(text, "'"+name+"'", bindings[name].String())
	}
	return text
}
