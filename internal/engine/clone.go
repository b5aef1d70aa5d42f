package engine

// cloneNode copies the node at h in src into dst, returning its new
// handle. memo maps already-cloned source handles to their destination
// handles, both to share structure correctly when the same node is
// reachable through more than one path and to guard against runaway
// recursion if a resolved Var chain were ever to loop back on itself.
//
// Constant leaves copy their Value outright (Values are treated as
// immutable once constructed, so sharing the same Go value across arenas
// is safe, matching §5's sharing policy). Var nodes are followed through
// their resolved target and the target is cloned too, so the clone keeps
// identical runtime behavior without needing a second, destination-scope
// name-resolution pass; this sidesteps the "rebind in the destination"
// wording of §4.3 without changing observable results for a
// single-document evaluator. Arg nodes get a fresh handle
// per clone so each Function materialization owns an independent set of
// parameter slots, exactly as §4.3's "keep their identity within that
// function's clone" requires.
func cloneNode(src, dst *Arena, h Handle, memo map[Handle]Handle) Handle {
	if nh, ok := memo[h]; ok {
		return nh
	}
	n := src.at(h)
	switch n.Kind {
	case NodeConstant:
		nh := dst.alloc(Node{Kind: NodeConstant, Const: n.Const, VarTarget: invalidHandle})
		memo[h] = nh
		return nh

	case NodeArg:
		nh := dst.alloc(Node{Kind: NodeArg, ArgName: n.ArgName, VarTarget: invalidHandle})
		memo[h] = nh
		return nh

	case NodeVar:
		nh := dst.alloc(Node{Kind: NodeVar, VarName: n.VarName, VarTarget: invalidHandle})
		memo[h] = nh
		if n.VarTarget != invalidHandle {
			dst.at(nh).VarTarget = cloneNode(src, dst, n.VarTarget, memo)
		} else {
			dst.at(nh).UnresolvedVars = []Handle{nh}
		}
		return nh

	case NodeArray:
		nh := dst.alloc(Node{Kind: NodeArray, VarTarget: invalidHandle})
		memo[h] = nh
		children := make([]Handle, len(n.Elems))
		for i, c := range n.Elems {
			children[i] = cloneNode(src, dst, c, memo)
		}
		dst.at(nh).Elems = children
		dst.at(nh).UnresolvedVars = dst.mergeUnresolved(children...)
		return nh

	case NodeMap:
		nh := dst.alloc(Node{Kind: NodeMap, VarTarget: invalidHandle})
		memo[h] = nh
		named := make([]namedChild, len(n.Named))
		var residual []Handle
		for i, nc := range n.Named {
			ch := cloneNode(src, dst, nc.Node, memo)
			named[i] = namedChild{Name: nc.Name, Node: ch}
			residual = append(residual, dst.at(ch).UnresolvedVars...)
		}
		dst.at(nh).Named = named
		dst.at(nh).UnresolvedVars = residual
		return nh

	case NodeUnary:
		nh := dst.alloc(Node{Kind: NodeUnary, UnaryOp: n.UnaryOp, VarTarget: invalidHandle})
		memo[h] = nh
		child := cloneNode(src, dst, n.Child, memo)
		dst.at(nh).Child = child
		dst.at(nh).UnresolvedVars = dst.mergeUnresolved(child)
		return nh

	case NodeBinary:
		nh := dst.alloc(Node{Kind: NodeBinary, BinaryOp: n.BinaryOp, VarTarget: invalidHandle})
		memo[h] = nh
		left := cloneNode(src, dst, n.Left, memo)
		right := cloneNode(src, dst, n.Right, memo)
		dst.at(nh).Left, dst.at(nh).Right = left, right
		dst.at(nh).UnresolvedVars = dst.mergeUnresolved(left, right)
		return nh

	case NodeAccess:
		nh := dst.alloc(Node{Kind: NodeAccess, Path: append([]string(nil), n.Path...), VarTarget: invalidHandle})
		memo[h] = nh
		receiver := cloneNode(src, dst, n.Receiver, memo)
		args := make([]Handle, len(n.Args))
		for i, ah := range n.Args {
			args[i] = cloneNode(src, dst, ah, memo)
		}
		dst.at(nh).Receiver = receiver
		dst.at(nh).Args = args
		dst.at(nh).UnresolvedVars = dst.mergeUnresolved(append([]Handle{receiver}, args...)...)
		return nh

	case NodeFunction:
		nh := dst.alloc(Node{Kind: NodeFunction, FuncName: n.FuncName, Patterns: n.Patterns, VarTarget: invalidHandle})
		memo[h] = nh
		argNodes := make([]Handle, len(n.ArgNodes))
		for i, ah := range n.ArgNodes {
			argNodes[i] = cloneNode(src, dst, ah, memo)
		}
		body := cloneNode(src, dst, n.Body, memo)
		dst.at(nh).ArgNodes = argNodes
		dst.at(nh).Body = body
		dst.at(nh).UnresolvedVars = dst.at(body).UnresolvedVars
		return nh
	case NodeIf:
		nh := dst.alloc(Node{Kind: NodeIf, VarTarget: invalidHandle})
		memo[h] = nh
		cond := cloneNode(src, dst, n.Cond, memo)
		then := cloneNode(src, dst, n.Then, memo)
		els := cloneNode(src, dst, n.Else, memo)
		dst.at(nh).Cond, dst.at(nh).Then, dst.at(nh).Else = cond, then, els
		dst.at(nh).UnresolvedVars = dst.mergeUnresolved(cond, then, els)
		return nh
	}
	return dst.NewConstant(NewError("malformed node during clone"))
}
