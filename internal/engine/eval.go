package engine

import (
	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/operator"
)

// Force computes the Value of node h, writing it into its memoization
// slot, following the algorithm of §4.3:
//
//  1. A populated memo slot is returned directly — Afed does not need the
//     Rust implementation's clone-vs-move distinction between saved and
//     unsaved nodes (Go's garbage collector and Value's copy-by-reference
//     immutability already make repeated reads of the same Value safe).
//  2. The evaluating flag guards against self-reference.
//  3. Children are forced per node kind, with Array/Map short-circuiting
//     on the first Error.
//  4. The result is memoized before returning.
func (a *Arena) Force(h Handle) Value {
	n := a.at(h)
	if n.Memo != nil {
		return n.Memo
	}
	if n.Evaluating {
		return WrapError(&aerr.CircularDependencyError{})
	}
	n.Evaluating = true
	result := a.forceInner(h)
	n = a.at(h) // re-fetch: forcing children may have grown a.Nodes and moved the backing array
	n.Memo = result
	n.Evaluating = false
	return result
}

func (a *Arena) forceInner(h Handle) Value {
	n := a.at(h)
	switch n.Kind {
	case NodeConstant:
		return n.Const

	case NodeArray:
		elems := make([]Value, len(n.Elems))
		for i, c := range n.Elems {
			v := a.Force(c)
			if IsError(v) {
				return v
			}
			elems[i] = v
		}
		return Array{elems}

	case NodeMap:
		m := NewMap()
		for _, nc := range n.Named {
			v := a.Force(nc.Node)
			if IsError(v) {
				return v
			}
			m = m.Put(nc.Name, v)
		}
		return m

	case NodeVar:
		if n.VarTarget == invalidHandle {
			return WrapError(&aerr.UnresolvedNameError{Name: n.VarName})
		}
		return a.Force(n.VarTarget)

	case NodeUnary:
		v := a.Force(n.Child)
		return UnaryDispatch(n.UnaryOp, v)

	case NodeBinary:
		return a.forceBinary(n)

	case NodeAccess:
		recv := a.Force(n.Receiver)
		if IsError(recv) {
			return recv
		}
		args := make([]Value, len(n.Args))
		for i, ah := range n.Args {
			v := a.Force(ah)
			if IsError(v) {
				return v
			}
			args[i] = v
		}
		return EvalAccess(recv, n.Path, args)

	case NodeArg:
		// Reached only if a call site failed to bind this argument before
		// forcing the body — a builder/evaluator bug, not a user error.
		return NewError("argument %s is not bound", n.ArgName)

	case NodeFunction:
		return a.materializeFunction(h)

	case NodeIf:
		cond := a.Force(n.Cond)
		if IsError(cond) {
			return cond
		}
		b, ok := cond.(Bool)
		if !ok {
			return typeMismatch("if", string(cond.Kind()), "")
		}
		if b.Value {
			return a.Force(n.Then)
		}
		return a.Force(n.Else)
	}
	return NewError("malformed expression node")
}

// forceBinary forces a Binary node's operands, honoring the short-circuit
// permission §5 grants `&&` and `||`: the right operand is only forced
// when the left side doesn't already determine the result.
func (a *Arena) forceBinary(n *Node) Value {
	left := a.Force(n.Left)
	if IsError(left) {
		return left
	}
	if n.BinaryOp == operator.And || n.BinaryOp == operator.Or {
		if b, ok := left.(Bool); ok {
			if n.BinaryOp == operator.And && !b.Value {
				return Bool{false}
			}
			if n.BinaryOp == operator.Or && b.Value {
				return Bool{true}
			}
		}
	}
	right := a.Force(n.Right)
	if IsError(right) {
		return right
	}
	return BinaryDispatch(n.BinaryOp, left, right)
}

// EvalAccess implements Access node evaluation (§4.3): attempt a plain
// attribute/member read first, falling back to Call with the final path
// segment as the attribute name whenever a segment isn't a plain member or
// the access carries call arguments.
func EvalAccess(receiver Value, path []string, args []Value) Value {
	if len(path) == 0 {
		if len(args) == 0 {
			return receiver
		}
		return Call(receiver, "", args)
	}
	cur := receiver
	for _, seg := range path[:len(path)-1] {
		if at, ok := cur.(Attributed); ok {
			if v, found := at.Attr(seg); found {
				cur = v
				continue
			}
		}
		cur = Call(cur, seg, nil)
		if IsError(cur) {
			return cur
		}
	}
	last := path[len(path)-1]
	if at, ok := cur.(Attributed); ok {
		if v, found := at.Attr(last); found {
			if len(args) == 0 {
				return v
			}
			return Call(v, "", args)
		}
	}
	return Call(cur, last, args)
}
