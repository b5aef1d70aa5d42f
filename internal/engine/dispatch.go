package engine

import (
	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/operator"
)

// UnaryDispatch applies a unary operator to v, per §4.1.
func UnaryDispatch(op operator.Unary, v Value) Value {
	if IsError(v) {
		return v
	}
	if r, ok := v.Unary(op); ok {
		return r
	}
	return typeMismatch(op.Symbol(), string(v.Kind()), "")
}

// BinaryDispatch applies a binary operator to (left, right), following the
// fixed dispatch order of §4.1:
//  1. `=`/`≠` are answered by deep structural equality.
//  2. `<`,`>`,`≥` are rewritten onto `≤` with operand swap and/or
//     post-negation.
//  3. operator application, then reversed application if the left side
//     refuses.
//  4. otherwise, an Error "operator not implemented between T1 and T2".
//
// Error contagion (§7) is checked before any of the above, except that
// `&&`/`||` are permitted to short-circuit without forcing the other
// side — that short-circuiting happens in the expression evaluator
// (expressions need a lazy right operand), not here: by the time a Value
// reaches BinaryDispatch both operands have already been forced.
func BinaryDispatch(op operator.Binary, left, right Value) Value {
	if IsError(left) {
		return left
	}
	if IsError(right) {
		return right
	}

	switch op {
	case operator.Eq:
		return Bool{left.Equal(right)}
	case operator.Ne:
		return Bool{!left.Equal(right)}
	case operator.Lt:
		// a < b  <=>  !(b <= a)
		r := BinaryDispatch(operator.Le, right, left)
		if IsError(r) {
			return r
		}
		return Bool{!r.(Bool).Value}
	case operator.Gt:
		// a > b  <=>  !(a <= b)
		r := BinaryDispatch(operator.Le, left, right)
		if IsError(r) {
			return r
		}
		return Bool{!r.(Bool).Value}
	case operator.Ge:
		// a >= b  <=>  b <= a
		return BinaryDispatch(operator.Le, right, left)
	case operator.Apply:
		return Apply(left, right)
	}

	if r, ok := left.Binary(false, op, right); ok {
		return r
	}
	if r, ok := right.Binary(true, op, left); ok {
		return r
	}
	return WrapError(&aerr.TypeMismatchError{Op: op.Symbol(), T1: string(left.Kind()), T2: string(right.Kind())})
}

// Call implements the currying call-dispatch protocol of §4.1: if the
// callee reports arity k and receives n arguments, n==k forwards, n<k
// returns a PartialApplication, and n>k calls with the first k then feeds
// the remainder to the result if it is itself callable, chaining
// PartialApplications as needed.
func Call(callee Value, attr string, args []Value) Value {
	if IsError(callee) {
		return callee
	}
	k, ok := callee.Arity(attr)
	if !ok {
		if attr == "" {
			return typeMismatch("$", string(callee.Kind()), "")
		}
		return NewError("no such attribute %s on %s", attr, callee.Kind())
	}
	n := len(args)
	switch {
	case n == k:
		return callee.Call(attr, args)
	case n < k:
		return NewPartialApplication(callee, attr, args, k-n)
	default: // n > k
		result := callee.Call(attr, args[:k])
		if IsError(result) {
			return result
		}
		rest := args[k:]
		if _, ok := result.Arity(""); ok {
			return Call(result, "", rest)
		}
		return WrapError(&aerr.ArityMismatchError{Expected: k, Got: n, Context: "call"})
	}
}

// Apply implements the `$` application operator: a one-argument call
// (§4.2).
func Apply(callee, arg Value) Value {
	return Call(callee, "", []Value{arg})
}
