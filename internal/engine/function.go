package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/funvibe/funxy/internal/operator"
)

// functionIDCounter is the second (and last) process-wide monotonic
// counter the specification permits (§5, §9).
var functionIDCounter uint64

func nextFunctionID() uint64 {
	return atomic.AddUint64(&functionIDCounter, 1)
}

// Function is a first-class Function Value (§4.4): it owns a private
// ExpressionArena holding a deep clone of its body and parameters, an
// ordered list of Patterns, and a globally unique id used for equality
// and as a display fallback when it has no name.
type Function struct {
	id        uint64
	name      *string
	patterns  []*Pattern
	nameToArg map[string]Handle
	arena     *Arena
	body      Handle
}

// materializeFunction builds the Function Value for the NodeFunction node
// at h: cloning its reachable sub-arena into a fresh, privately owned
// arena (§4.3's "cloning sub-arenas").
func (a *Arena) materializeFunction(h Handle) *Function {
	n := a.at(h)
	dst := NewArena()
	memo := map[Handle]Handle{}

	newArgNodes := make([]Handle, len(n.ArgNodes))
	for i, ah := range n.ArgNodes {
		newArgNodes[i] = cloneNode(a, dst, ah, memo)
	}
	newBody := cloneNode(a, dst, n.Body, memo)

	nameToArg := map[string]Handle{}
	idx := 0
	for _, p := range n.Patterns {
		for _, id := range p.ArgNames() {
			nameToArg[id] = newArgNodes[idx]
			idx++
		}
	}

	return &Function{
		id:        nextFunctionID(),
		name:      n.FuncName,
		patterns:  n.Patterns,
		nameToArg: nameToArg,
		arena:     dst,
		body:      newBody,
	}
}

func (f *Function) Kind() Kind { return KindFunc }

func (f *Function) Unary(operator.Unary) (Value, bool) { return nil, false }

func (f *Function) Binary(bool, operator.Binary, Value) (Value, bool) { return nil, false }

func (f *Function) Arity(attr string) (int, bool) {
	if attr != "" {
		return 0, false
	}
	return len(f.patterns), true
}

func (f *Function) Help(attr string) (string, bool) { return "", false }

// Call implements §4.4's call semantics: clear every memoization slot in
// the private arena, bind arguments by pattern, force the body.
func (f *Function) Call(attr string, args []Value) Value {
	if attr != "" {
		return typeMismatch("$", "Function", "")
	}
	for i := range f.arena.Nodes {
		f.arena.Nodes[i].Memo = nil
		f.arena.Nodes[i].Evaluating = false
	}
	setter := func(id string, v Value) {
		if h, ok := f.nameToArg[id]; ok {
			f.arena.at(h).Memo = v
		}
	}
	for i, p := range f.patterns {
		if err := Match(p, args[i], setter); err != nil {
			return err
		}
	}
	return f.arena.Force(f.body)
}

func (f *Function) Display() string {
	if f.name != nil {
		return *f.name
	}
	return fmt.Sprintf("<function #%d>", f.id)
}

func (f *Function) Equal(other Value) bool {
	o, ok := other.(*Function)
	return ok && o.id == f.id
}
