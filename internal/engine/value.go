// Package engine implements the evaluation core of Afed: the polymorphic
// Value system (§4.1), the operator catalog's dispatch protocol, the
// expression graph (§4.3), and first-class functions with pattern matching
// (§4.4). These live in one package, following the teacher's own
// evaluator package, because Value, the arena's Node, and Function are
// mutually referential: a Function Value owns an arena, and arena nodes
// hold Values as constants.
package engine

import (
	"github.com/funvibe/funxy/internal/operator"
)

// Kind discriminates the Value variants of §3.
type Kind string

const (
	KindNull    Kind = "Null"
	KindBool    Kind = "Bool"
	KindNumber  Kind = "Number"
	KindString  Kind = "String"
	KindArray   Kind = "Array"
	KindMap     Kind = "Map"
	KindError   Kind = "Error"
	KindPartial Kind = "PartialApplication"
	KindFunc    Kind = "Function"
	KindPlugin  Kind = "Plugin"
)

// Value is the uniform dynamic-dispatch protocol every runtime datum
// implements (§4.1).
type Value interface {
	Kind() Kind

	// Unary applies a unary operator to this value. ok is false when the
	// operator is not supported by this type.
	Unary(op operator.Unary) (Value, bool)

	// Binary applies a binary operator with this value as the left-hand
	// side unless reversed is true (in which case this value is the
	// right-hand side and other is the left-hand side, e.g. when the
	// first dispatch attempt failed and Dispatch is retrying swapped).
	// ok is false when this type does not implement the operator against
	// other's type, in which case the caller retries with sides swapped.
	Binary(reversed bool, op operator.Binary, other Value) (Value, bool)

	// Arity reports the number of arguments a call accepts, or an
	// attribute's arity when attr is non-empty. ok is false if the
	// receiver (or its attribute) is not callable.
	Arity(attr string) (int, bool)

	// Help returns documentation for the receiver or one of its
	// attributes, if any is registered.
	Help(attr string) (string, bool)

	// Call invokes the receiver (or one of its attributes, if attr is
	// non-empty) with the given arguments. Arity currying (§4.1) is
	// handled by the shared Call() dispatcher, not by implementations.
	Call(attr string, args []Value) Value

	// Display renders the value per the observable surface in §4.5.
	Display() string

	// Equal implements deep structural equality, used both by `=`/`≠`
	// dispatch (§4.1 step 1) and by the testable-equality properties of
	// §8.
	Equal(other Value) bool
}

// Attributed is implemented by values whose attribute lookup can resolve
// without forcing a call — currently only Map, whose members are plain
// Value lookups rather than calls. Access nodes (§4.3) use this to try
// the arena-local fast path before falling back to Call-based dispatch.
type Attributed interface {
	Value
	Attr(name string) (Value, bool)
}

// callable reports the arity of a Value with no attribute selected, used
// by the generic Call() curry/apply dispatcher.
func callable(v Value) (int, bool) {
	return v.Arity("")
}

// IsError reports whether v is an Error value — the single short-circuit
// test every operator/call dispatch performs for contagion (§7).
func IsError(v Value) bool {
	_, ok := v.(*ErrorValue)
	return ok
}

// AsError returns v as *ErrorValue if it is one.
func AsError(v Value) (*ErrorValue, bool) {
	e, ok := v.(*ErrorValue)
	return e, ok
}
