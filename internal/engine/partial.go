package engine

import (
	"fmt"

	"github.com/funvibe/funxy/internal/operator"
)

// PartialApplication is a callable Value representing a call with some
// arguments already supplied (§4.4, glossary). Calling it with further
// arguments concatenates them after the captured ones and re-dispatches
// through Call(), which is what gives currying its chain behavior.
type PartialApplication struct {
	Callee   Value
	Attr     string
	Captured []Value
	Remain   int // remaining arity, i.e. Callee's (attr) arity minus len(Captured)
}

// NewPartialApplication builds a PartialApplication, flattening self-curry:
// partial-applying a PartialApplication reuses the inner callee and
// extends its argument list rather than nesting (§4.4, §8's
// PartialApplication-flattening property).
func NewPartialApplication(callee Value, attr string, captured []Value, remain int) Value {
	if pa, ok := callee.(*PartialApplication); ok && attr == "" {
		merged := make([]Value, 0, len(pa.Captured)+len(captured))
		merged = append(merged, pa.Captured...)
		merged = append(merged, captured...)
		return &PartialApplication{Callee: pa.Callee, Attr: pa.Attr, Captured: merged, Remain: remain}
	}
	return &PartialApplication{Callee: callee, Attr: attr, Captured: captured, Remain: remain}
}

func (p *PartialApplication) Kind() Kind { return KindPartial }

func (p *PartialApplication) Unary(operator.Unary) (Value, bool) { return nil, false }

func (p *PartialApplication) Binary(bool, operator.Binary, Value) (Value, bool) { return nil, false }

func (p *PartialApplication) Arity(attr string) (int, bool) {
	if attr != "" {
		return 0, false
	}
	return p.Remain, true
}

func (p *PartialApplication) Help(string) (string, bool) { return "", false }

func (p *PartialApplication) Call(attr string, args []Value) Value {
	if attr != "" {
		return typeMismatch("$", "PartialApplication", "")
	}
	all := make([]Value, 0, len(p.Captured)+len(args))
	all = append(all, p.Captured...)
	all = append(all, args...)
	return Call(p.Callee, p.Attr, all)
}

func (p *PartialApplication) Display() string {
	return fmt.Sprintf("<partial application, %d argument(s) remaining>", p.Remain)
}

func (p *PartialApplication) Equal(other Value) bool {
	o, ok := other.(*PartialApplication)
	if !ok || o.Attr != p.Attr || len(o.Captured) != len(p.Captured) || !o.Callee.Equal(p.Callee) {
		return false
	}
	for i := range p.Captured {
		if !p.Captured[i].Equal(o.Captured[i]) {
			return false
		}
	}
	return true
}
