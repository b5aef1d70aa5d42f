package engine

import (
	"sort"
	"strings"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/operator"
)

// Array is the Array variant of §3: an ordered sequence of Value. Per §5,
// copies of an Array may share the same backing slice; Array values are
// never mutated in place once constructed (the `+`/index operators build
// new Arrays).
type Array struct{ Elems []Value }

func NewArray(elems []Value) Array { return Array{Elems: elems} }

func (Array) Kind() Kind { return KindArray }

func (Array) Unary(operator.Unary) (Value, bool) { return nil, false }

func (a Array) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	o, ok := other.(Array)
	if !ok {
		return nil, false
	}
	left, right := a, o
	if reversed {
		left, right = right, left
	}
	if op == operator.Add {
		out := make([]Value, 0, len(left.Elems)+len(right.Elems))
		out = append(out, left.Elems...)
		out = append(out, right.Elems...)
		return Array{out}, true
	}
	return nil, false
}

var arrayMethodArity = map[string]int{
	"len": 0, "at": 1, "map": 1, "filter": 1, "reduce": 2, "concat": 1,
}

func (Array) Arity(attr string) (int, bool) {
	n, ok := arrayMethodArity[attr]
	return n, ok
}

func (Array) Help(string) (string, bool) { return "", false }

func (a Array) Call(attr string, args []Value) Value {
	switch attr {
	case "len":
		return NewRatioInt(int64(len(a.Elems)))
	case "at":
		i, ok := indexArg(args[0])
		if !ok || i < 0 || i >= len(a.Elems) {
			if !ok {
				return typeMismatch("at", "Array", string(args[0].Kind()))
			}
			return WrapError(&aerr.IndexOutOfBoundsError{Index: i, Len: len(a.Elems)})
		}
		return a.Elems[i]
	case "concat":
		o, ok := args[0].(Array)
		if !ok {
			return typeMismatch("concat", "Array", string(args[0].Kind()))
		}
		out := make([]Value, 0, len(a.Elems)+len(o.Elems))
		out = append(out, a.Elems...)
		out = append(out, o.Elems...)
		return Array{out}
	case "map":
		out := make([]Value, len(a.Elems))
		for i, e := range a.Elems {
			r := Call(args[0], "", []Value{e})
			if IsError(r) {
				return r
			}
			out[i] = r
		}
		return Array{out}
	case "filter":
		var out []Value
		for _, e := range a.Elems {
			r := Call(args[0], "", []Value{e})
			if IsError(r) {
				return r
			}
			if b, ok := r.(Bool); ok && b.Value {
				out = append(out, e)
			}
		}
		return Array{out}
	case "reduce":
		acc := args[0]
		for _, e := range a.Elems {
			acc = Call(args[1], "", []Value{acc, e})
			if IsError(acc) {
				return acc
			}
		}
		return acc
	}
	return typeMismatch("$", "Array", "")
}

func (a Array) Display() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Display())
	}
	b.WriteByte(']')
	return b.String()
}

func (a Array) Equal(other Value) bool {
	o, ok := other.(Array)
	if !ok || len(o.Elems) != len(a.Elems) {
		return false
	}
	for i := range a.Elems {
		if !a.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// isIdentLike reports whether key matches the unquoted-display rule of
// §4.5: `[A-Za-z][A-Za-z0-9_]*`.
func isIdentLike(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isAlpha {
				return false
			}
			continue
		}
		if !isAlpha && !isDigit && r != '_' {
			return false
		}
	}
	return true
}

// Map is the Map variant of §3: an insertion-ordered mapping from string
// key to Value. Iteration order is unspecified by the spec; Afed keeps
// insertion order internally (matching the document's left-to-right
// forcing order, §5) but callers must not rely on it beyond Display.
type Map struct {
	keys   []string
	values map[string]Value
}

func NewMap() Map {
	return Map{values: map[string]Value{}}
}

func (m Map) Put(key string, v Value) Map {
	nm := Map{keys: make([]string, len(m.keys)), values: make(map[string]Value, len(m.values)+1)}
	copy(nm.keys, m.keys)
	for k, v2 := range m.values {
		nm.values[k] = v2
	}
	if _, exists := nm.values[key]; !exists {
		nm.keys = append(nm.keys, key)
	}
	nm.values[key] = v
	return nm
}

func (m Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m Map) Len() int { return len(m.keys) }

func (Map) Kind() Kind { return KindMap }

func (Map) Unary(operator.Unary) (Value, bool) { return nil, false }

func (m Map) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	o, ok := other.(Map)
	if !ok {
		return nil, false
	}
	left, right := m, o
	if reversed {
		left, right = right, left
	}
	if op == operator.Add {
		// Right-biased merge (§8 scenario 4): left's keys first in order,
		// then right's new keys appended; right's values win on conflict.
		out := left
		for _, k := range right.keys {
			v, _ := right.Get(k)
			out = out.Put(k, v)
		}
		return out, true
	}
	return nil, false
}

func (Map) Arity(attr string) (int, bool) {
	switch attr {
	case "len", "keys":
		return 0, true
	}
	return 0, false
}

func (Map) Help(string) (string, bool) { return "", false }

func (m Map) Call(attr string, args []Value) Value {
	switch attr {
	case "len":
		return NewRatioInt(int64(m.Len()))
	case "keys":
		out := make([]Value, len(m.keys))
		for i, k := range m.keys {
			out[i] = String{k}
		}
		return Array{out}
	}
	return typeMismatch("$", "Map", "")
}

// Attr implements the fast-path attribute lookup Access nodes try first
// (§4.3, §12): a plain member read, not a call.
func (m Map) Attr(name string) (Value, bool) {
	return m.Get(name)
}

func (m Map) Display() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		if isIdentLike(k) {
			b.WriteString(k)
		} else {
			b.WriteString(String{k}.Display())
		}
		b.WriteString(": ")
		v, _ := m.Get(k)
		b.WriteString(v.Display())
	}
	b.WriteByte('}')
	return b.String()
}

func (m Map) Equal(other Value) bool {
	o, ok := other.(Map)
	if !ok || o.Len() != m.Len() {
		return false
	}
	for _, k := range m.keys {
		v1, _ := m.Get(k)
		v2, ok := o.Get(k)
		if !ok || !v1.Equal(v2) {
			return false
		}
	}
	return true
}

// sortedKeys returns the map's keys in lexical order, regardless of the
// map's recorded insertion order. Nothing in the package calls it.
func (m Map) sortedKeys() []string {
	out := m.Keys()
	sort.Strings(out)
	return out
}
