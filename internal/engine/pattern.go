package engine

import "github.com/funvibe/funxy/internal/aerr"

// PatternKind discriminates the Pattern tree of §3/§4.4.
type PatternKind int

const (
	PatternIgnore PatternKind = iota
	PatternArg
	PatternArray
	PatternMap
)

// Pattern is a destructuring pattern. Leaves are Ignore and Arg(identifier);
// interior nodes are Array (fixed arity) and Map (with a fuzzy flag that
// tolerates unused keys).
type Pattern struct {
	Kind PatternKind

	// PatternArg
	Name string

	// PatternArray
	Elems []*Pattern

	// PatternMap
	Fuzzy  bool
	Fields []PatternField
}

// PatternField is one named sub-pattern of a Map pattern.
type PatternField struct {
	Key     string
	Pattern *Pattern
}

// ArgNames returns every identifier bound by p, in left-to-right order.
// Used to enforce the no-repeated-identifier invariant (§3) and by the
// pattern round-trip property (§8).
func (p *Pattern) ArgNames() []string {
	var out []string
	var walk func(*Pattern)
	walk = func(p *Pattern) {
		switch p.Kind {
		case PatternArg:
			out = append(out, p.Name)
		case PatternArray:
			for _, e := range p.Elems {
				walk(e)
			}
		case PatternMap:
			for _, f := range p.Fields {
				walk(f.Pattern)
			}
		}
	}
	walk(p)
	return out
}

// ValidateUnique enforces §3's invariant that no argument identifier
// repeats within a single function's parameter list.
func ValidateUnique(patterns []*Pattern) error {
	seen := map[string]bool{}
	for _, p := range patterns {
		for _, id := range p.ArgNames() {
			if seen[id] {
				return &duplicateArgError{id}
			}
			seen[id] = true
		}
	}
	return nil
}

type duplicateArgError struct{ name string }

func (e *duplicateArgError) Error() string {
	return "duplicate argument identifier " + e.name
}

// Setter writes a bound value for the argument named id.
type Setter func(id string, v Value)

// Match destructures val against p, invoking setter for every bound Arg
// leaf (§4.4). It returns an Error Value on shape mismatch, or nil on
// success.
func Match(p *Pattern, val Value, setter Setter) Value {
	switch p.Kind {
	case PatternIgnore:
		return nil

	case PatternArg:
		setter(p.Name, val)
		return nil

	case PatternArray:
		arr, ok := val.(Array)
		if !ok {
			return typeMismatch("pattern", "Array", string(val.Kind()))
		}
		if len(arr.Elems) != len(p.Elems) {
			return WrapError(&aerr.ArityMismatchError{Expected: len(p.Elems), Got: len(arr.Elems), Context: "Array"})
		}
		for i, sub := range p.Elems {
			if err := Match(sub, arr.Elems[i], setter); err != nil {
				return err
			}
		}
		return nil

	case PatternMap:
		m, ok := val.(Map)
		if !ok {
			return typeMismatch("pattern", "Map", string(val.Kind()))
		}
		used := map[string]bool{}
		for _, f := range p.Fields {
			v, ok := m.Get(f.Key)
			if !ok {
				return WrapError(&aerr.MissingKeyError{Key: f.Key})
			}
			used[f.Key] = true
			if err := Match(f.Pattern, v, setter); err != nil {
				return err
			}
		}
		if !p.Fuzzy {
			var unused []string
			for _, k := range m.Keys() {
				if !used[k] {
					unused = append(unused, k)
				}
			}
			if len(unused) > 0 {
				return WrapError(&aerr.UnusedKeysError{Keys: unused})
			}
		}
		return nil
	}
	return NewError("malformed pattern")
}
