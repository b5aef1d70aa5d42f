package engine

import "github.com/funvibe/funxy/internal/operator"

// Arena is an append-only vector that owns every ExpressionNode parsed (or
// cloned) into it; node references are plain indices into Nodes, never
// pointers, so the arena never invalidates a Handle (§3, §9).
type Arena struct {
	Nodes []Node
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) alloc(n Node) Handle {
	a.Nodes = append(a.Nodes, n)
	return Handle(len(a.Nodes) - 1)
}

func (a *Arena) at(h Handle) *Node { return &a.Nodes[h] }

// NewConstant allocates a Constant node.
func (a *Arena) NewConstant(v Value) Handle {
	return a.alloc(Node{Kind: NodeConstant, Const: v, VarTarget: invalidHandle})
}

// NewVar allocates an unresolved Var node referencing name, and records it
// in its own UnresolvedVars list (construction takes ownership of
// children's lists by concatenation; a bare Var node's own list is just
// itself).
func (a *Arena) NewVar(name string) Handle {
	h := a.alloc(Node{Kind: NodeVar, VarName: name, VarTarget: invalidHandle})
	a.at(h).UnresolvedVars = []Handle{h}
	return h
}

// NewArg allocates an Arg leaf node for a function parameter.
func (a *Arena) NewArg(name string) Handle {
	return a.alloc(Node{Kind: NodeArg, ArgName: name, VarTarget: invalidHandle})
}

// NewArray allocates an Array node, concatenating each child's unresolved
// Var list into the parent's (§4.3 construction protocol).
func (a *Arena) NewArray(children []Handle) Handle {
	h := a.alloc(Node{Kind: NodeArray, Elems: children, VarTarget: invalidHandle})
	a.at(h).UnresolvedVars = a.mergeUnresolved(children...)
	return h
}

// NewUnary allocates a Unary node.
func (a *Arena) NewUnary(op operator.Unary, child Handle) Handle {
	h := a.alloc(Node{Kind: NodeUnary, UnaryOp: op, Child: child, VarTarget: invalidHandle})
	a.at(h).UnresolvedVars = a.mergeUnresolved(child)
	return h
}

// NewBinary allocates a Binary node.
func (a *Arena) NewBinary(op operator.Binary, left, right Handle) Handle {
	h := a.alloc(Node{Kind: NodeBinary, BinaryOp: op, Left: left, Right: right, VarTarget: invalidHandle})
	a.at(h).UnresolvedVars = a.mergeUnresolved(left, right)
	return h
}

// NewAccess allocates an Access node: receiver.path[...](args).
func (a *Arena) NewAccess(receiver Handle, path []string, args []Handle) Handle {
	h := a.alloc(Node{Kind: NodeAccess, Receiver: receiver, Path: path, Args: args, VarTarget: invalidHandle})
	deps := append([]Handle{receiver}, args...)
	a.at(h).UnresolvedVars = a.mergeUnresolved(deps...)
	return h
}

// MapMember is one member supplied to NewMap, in source order.
type MapMember struct {
	Name string
	Node Handle
}

// NewMap allocates a Map node. Per §4.3's construction protocol, each
// member's unresolved Var references to sibling member names are resolved
// against this same Map before any residual unresolved names are merged
// upward. Duplicate keys keep the first occurrence and report a warning
// diagnostic through dupWarn (the original-source-confirmed semantics,
// see SPEC_FULL.md §12/§15) — dupWarn may be nil to silently drop.
func (a *Arena) NewMap(members []MapMember, dupWarn func(name string)) Handle {
	named := make(map[string]Handle, len(members))
	var ordered []namedChild
	for _, m := range members {
		if _, exists := named[m.Name]; exists {
			if dupWarn != nil {
				dupWarn(m.Name)
			}
			continue
		}
		named[m.Name] = m.Node
		ordered = append(ordered, namedChild{Name: m.Name, Node: m.Node})
	}

	h := a.alloc(Node{Kind: NodeMap, Named: ordered, VarTarget: invalidHandle})

	// Resolve sibling references first (local scope), then merge whatever
	// remains unresolved up to the parent.
	lookup := func(name string) (Handle, bool) {
		t, ok := named[name]
		return t, ok
	}
	var residual []Handle
	for _, m := range ordered {
		a.resolveSubtree(m.Node, lookup, &residual)
	}
	a.at(h).UnresolvedVars = residual
	return h
}

// mergeUnresolved concatenates each child's UnresolvedVars list.
func (a *Arena) mergeUnresolved(children ...Handle) []Handle {
	var out []Handle
	for _, c := range children {
		out = append(out, a.at(c).UnresolvedVars...)
	}
	return out
}

// resolveSubtree walks every node reachable through h's UnresolvedVars
// list, resolving names found in lookup and appending the rest to
// *residual. It is the shared engine behind both NewMap's local scoping
// and the document-level NameResolution pass.
func (a *Arena) resolveSubtree(h Handle, lookup func(string) (Handle, bool), residual *[]Handle) {
	for _, v := range a.at(h).UnresolvedVars {
		node := a.at(v)
		if node.VarTarget != invalidHandle {
			continue // already resolved by an earlier pass (idempotence, §4.3)
		}
		if t, ok := lookup(node.VarName); ok {
			node.VarTarget = t
			continue
		}
		*residual = append(*residual, v)
	}
}

// NewFunctionChecked is NewFunction plus the §3 invariant check that no
// argument identifier repeats across patterns; parsers should prefer this
// over NewFunction directly.
func (a *Arena) NewFunctionChecked(name *string, patterns []*Pattern, body Handle) (Handle, error) {
	if err := ValidateUnique(patterns); err != nil {
		return invalidHandle, err
	}
	return a.NewFunction(name, patterns, body), nil
}

// NewFunction allocates a Function node, converting every reference in
// body to one of patterns' argument names into a reference to a dedicated
// Arg node, removing those names from body's unresolved list (§4.3). It
// allocates one Arg node per distinct identifier across patterns'
// ArgNames() itself and rewires body's Var nodes to them by name.
func (a *Arena) NewFunction(name *string, patterns []*Pattern, body Handle) Handle {
	argHandles := map[string]Handle{}
	var argNodes []Handle
	for _, p := range patterns {
		for _, id := range p.ArgNames() {
			if _, dup := argHandles[id]; dup {
				continue // invariant violation caught by the builder before reaching here
			}
			ah := a.NewArg(id)
			argHandles[id] = ah
			argNodes = append(argNodes, ah)
		}
	}

	var residual []Handle
	lookup := func(name string) (Handle, bool) {
		t, ok := argHandles[name]
		return t, ok
	}
	a.resolveSubtree(body, lookup, &residual)

	h := a.alloc(Node{
		Kind:     NodeFunction,
		FuncName: name,
		Patterns: patterns,
		ArgNodes: argNodes,
		Body:     body,
		VarTarget: invalidHandle,
	})
	a.at(h).UnresolvedVars = residual
	return h
}

// NewIf allocates the lazy 3-ary `if` node (SPEC_FULL.md §12): cond is
// forced eagerly, but only one of then/els is ever forced.
func (a *Arena) NewIf(cond, then, els Handle) Handle {
	h := a.alloc(Node{Kind: NodeIf, Cond: cond, Then: then, Else: els, VarTarget: invalidHandle})
	a.at(h).UnresolvedVars = a.mergeUnresolved(cond, then, els)
	return h
}

// Resolve runs document-level name resolution: every Var node still
// reachable from roots' unresolved lists is looked up against names; a
// Document calls this once with its top-level member scope. Resolution is
// idempotent: a Var already resolved is skipped (§4.3).
func (a *Arena) Resolve(roots []Handle, names map[string]Handle) []Handle {
	lookup := func(n string) (Handle, bool) { h, ok := names[n]; return h, ok }
	var residual []Handle
	for _, r := range roots {
		a.resolveSubtree(r, lookup, &residual)
	}
	return residual
}

// MarkSaved marks h's memoization slot as saved, so a document-level name
// binding or substitution target keeps its computed Value alive rather than
// being treated as disposable once forced (§4.3, §4.5). Callers that track
// a binding through a Var indirection mark the Var's own handle; Force
// already follows NodeVar to its target, so a second, separately-memoized
// copy of the Value sits behind the Var node regardless.
func (a *Arena) MarkSaved(h Handle) {
	a.at(h).Saved = true
}
