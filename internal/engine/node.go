package engine

import "github.com/funvibe/funxy/internal/operator"

// Handle is an index into an Arena's node vector. Node references are
// always handles, never pointers, so the arena can clone and grow freely
// (§3, §9).
type Handle int

const invalidHandle Handle = -1

// InvalidHandle is the exported form of the sentinel handle, for callers
// outside the package (parsers, tests) that need to report "no node" --
// e.g. a parse error abandoning a partially built expression.
const InvalidHandle Handle = invalidHandle

// NodeKind discriminates ExpressionNode's inner variant (§3).
type NodeKind int

const (
	NodeConstant NodeKind = iota
	NodeArray
	NodeMap
	NodeVar
	NodeUnary
	NodeBinary
	NodeAccess
	NodeArg
	NodeFunction
	NodeIf
)

// namedChild is one member of a Map literal node, keeping insertion order
// alongside the handle (§3: Map construction resolves unresolved names of
// each member against the same map's named children).
type namedChild struct {
	Name string
	Node Handle
}

// Node is one ExpressionNode (§3). Only the fields relevant to Kind are
// populated; this mirrors the spec's tagged-variant description using a
// single struct with per-kind fields, the same shallow-variant style the
// teacher uses for its AST nodes (internal/ast/ast_core.go).
type Node struct {
	Kind NodeKind

	// NodeConstant
	Const Value

	// NodeArray
	Elems []Handle

	// NodeMap
	Named []namedChild

	// NodeVar
	VarName   string
	VarTarget Handle // invalidHandle until resolved

	// NodeUnary
	UnaryOp operator.Unary
	Child   Handle

	// NodeBinary
	BinaryOp    operator.Binary
	Left, Right Handle

	// NodeAccess
	Receiver Handle
	Path     []string
	Args     []Handle

	// NodeArg
	ArgName string

	// NodeFunction
	FuncName *string
	Patterns []*Pattern
	ArgNodes []Handle // the Arg-node handle backing each pattern's bindings
	Body     Handle

	// NodeIf: the 3-ary `if` built-in (SPEC_FULL.md §12), kept as a
	// dedicated node rather than a generic Call so its then/else branches
	// are forced on demand instead of eagerly.
	Cond, Then, Else Handle

	// Bookkeeping shared by every kind.
	UnresolvedVars []Handle // back-references to NodeVar nodes still needing lookup
	Evaluating     bool     // cycle guard, set while forcing
	Saved          bool     // memo slot must survive forcing (named member / substitution target)
	Memo           Value    // nil = empty memoization slot
	usedAsArg      bool     // NodeArg read-tracking flag; nothing in the package sets it
}
