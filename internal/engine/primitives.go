package engine

import "github.com/funvibe/funxy/internal/operator"

// Null is the unit value.
type Null struct{}

func (Null) Kind() Kind                                     { return KindNull }
func (Null) Unary(operator.Unary) (Value, bool)              { return nil, false }
func (Null) Binary(bool, operator.Binary, Value) (Value, bool) { return nil, false }
func (Null) Arity(string) (int, bool)                        { return 0, false }
func (Null) Help(string) (string, bool)                      { return "", false }
func (Null) Call(string, []Value) Value                      { return typeMismatch("$", "Null", "") }
func (Null) Display() string                                 { return "null" }
func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

// Bool is the boolean value.
type Bool struct{ Value bool }

func (Bool) Kind() Kind { return KindBool }

func (b Bool) Unary(op operator.Unary) (Value, bool) {
	if op == operator.Not {
		return Bool{!b.Value}, true
	}
	return nil, false
}

func (b Bool) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	o, ok := other.(Bool)
	if !ok {
		return nil, false
	}
	left, right := b.Value, o.Value
	if reversed {
		left, right = right, left
	}
	switch op {
	case operator.And:
		return Bool{left && right}, true
	case operator.Or:
		return Bool{left || right}, true
	}
	return nil, false
}

func (Bool) Arity(string) (int, bool)   { return 0, false }
func (Bool) Help(string) (string, bool) { return "", false }
func (Bool) Call(string, []Value) Value { return typeMismatch("$", "Bool", "") }
func (b Bool) Display() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && o.Value == b.Value
}
