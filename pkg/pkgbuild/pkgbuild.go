// Package pkgbuild defines the Package contract that both built-in
// standard packages (pkg/stdpkgs/...) and externally loaded plug-ins
// (pkg/plugin) implement, following the specification's §6 description of
// a plug-in as a factory producing a name, a version, and a tree of
// Values. It is grounded on original_source's afed_objects/src/pkg.rs
// (the Rust Pkg/PkgFunc types), translated from Rust's const-generic
// function wrapper into engine.PluginValue's opaque-type v-table.
package pkgbuild

import (
	"fmt"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/engine"
)

// Package is one loaded collaborator: a name, a semantic version string
// checked against the host's expected protocol version, a Value tree
// exposed under that name, and a Globals subset additionally merged
// directly into the document's top-level scope (§6's "Package is either a
// single Value or a nested mapping", plus the global-name merge rule).
type Package struct {
	Name    string
	Version string
	Tree    engine.Value
	Globals map[string]engine.Value
}

// Factory builds a Package on demand; pkg/stdpkgs implementations are
// plain functions of this type, and pkg/plugin adapts a dynamically
// loaded process's Describe RPC response into the same shape.
type Factory func() (*Package, error)

// Registry holds every Package loaded into one Document's evaluation, by
// name, rejecting duplicates and version mismatches before a name is ever
// looked up (§6: "duplicate package names are rejected").
type Registry struct {
	expectedVersion string
	byName          map[string]*Package
}

// NewRegistry returns an empty Registry that requires every Package
// registered into it to declare expectedVersion.
func NewRegistry(expectedVersion string) *Registry {
	return &Registry{expectedVersion: expectedVersion, byName: map[string]*Package{}}
}

// Register adds pkg, enforcing no duplicate name and a matching version.
func (r *Registry) Register(pkg *Package) error {
	if pkg.Version != r.expectedVersion {
		return fmt.Errorf("package %s declares protocol version %s, host expects %s", pkg.Name, pkg.Version, r.expectedVersion)
	}
	if _, exists := r.byName[pkg.Name]; exists {
		return fmt.Errorf("duplicate package name %q", pkg.Name)
	}
	r.byName[pkg.Name] = pkg
	return nil
}

// Names returns every registered package name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}

// Bindings returns the scope map a Document merges at its root: every
// package's own name bound to its Tree, plus every package's Globals
// entries bound directly (§6's global-name merge). When two packages bind
// the same name, one binding silently replaces the other; packages are
// visited in map order, so which one is kept is not defined.
func (r *Registry) Bindings() map[string]engine.Value {
	out := map[string]engine.Value{}
	for name, pkg := range r.byName {
		out[name] = pkg.Tree
		for g, v := range pkg.Globals {
			out[g] = v
		}
	}
	return out
}

// Func builds a builtin function Value of the given arity, grounded on
// PkgFunc<N>'s protocol methods (arity query, help text, and the call
// itself) reimplemented over engine.PluginValue's host-method v-table.
func Func(name, help string, arity int, fn func(args []engine.Value) engine.Value) engine.Value {
	identity := engine.NewTypeIdentity("pkgbuild.Func", name)
	return &engine.PluginValue{
		TypeName: "builtin function",
		Identity: identity,
		Payload:  name,
		Methods: engine.HostMethods{
			Arity: func(attr string, self *engine.PluginValue) (int, bool) {
				switch attr {
				case "":
					return arity, true
				case "arity":
					return 0, true
				}
				return 0, false
			},
			Help: func(attr string, self *engine.PluginValue) (string, bool) {
				switch attr {
				case "":
					return help, true
				case "arity":
					return "arity -> Number\nNumber of arguments to builtin function", true
				}
				return "", false
			},
			Call: func(attr string, self *engine.PluginValue, args []engine.Value) engine.Value {
				switch attr {
				case "":
					if len(args) != arity {
						return engine.WrapError(&aerr.ArityMismatchError{Expected: arity, Got: len(args), Context: "call"})
					}
					return fn(args)
				case "arity":
					return engine.NewRatioInt(int64(arity))
				}
				return engine.NewError("unknown attribute %s on builtin function %s", attr, name)
			},
			Display: func(self *engine.PluginValue) string { return name },
			Equal: func(self *engine.PluginValue, other engine.Value) bool {
				o, ok := other.(*engine.PluginValue)
				return ok && o.Identity.Equal(self.Identity) && o.Payload == self.Payload
			},
		},
	}
}

// Map builds a plain nested-namespace Value out of a Go map, the Package
// tree's ordinary shape for a module exposing several functions/constants
// under one name (e.g. "num.gcd", "num.factorial").
func Map(entries map[string]engine.Value) engine.Value {
	m := engine.NewMap()
	for k, v := range entries {
		m = m.Put(k, v)
	}
	return m
}

// The To*/From* helpers below convert between engine.Value and Go scalar
// types; pkg/genpkg's generated wrappers call these so a codegen'd binding
// file has no conversion logic of its own to get wrong.

// ToInt converts v to an int64, accepting an exact-integer Number only.
func ToInt(v engine.Value) (int64, bool) {
	n, ok := v.(engine.Number)
	if !ok || n.IsReal() {
		return 0, false
	}
	num, den := n.Ratio()
	if den != 1 {
		return 0, false
	}
	return num, true
}

// ToFloat converts v to a float64, accepting any Number.
func ToFloat(v engine.Value) (float64, bool) {
	n, ok := v.(engine.Number)
	if !ok {
		return 0, false
	}
	return n.Float(), true
}

// ToString converts v to a Go string, accepting a String Value only.
func ToString(v engine.Value) (string, bool) {
	s, ok := v.(engine.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

// ToBool converts v to a Go bool, accepting a Bool Value only.
func ToBool(v engine.Value) (bool, bool) {
	b, ok := v.(engine.Bool)
	if !ok {
		return false, false
	}
	return b.Value, true
}

// FromInt wraps n as an exact integer Ratio Number.
func FromInt(n int64) engine.Value { return engine.NewRatioInt(n) }

// FromFloat wraps f as a Real Number.
func FromFloat(f float64) engine.Value { return engine.NewReal(f) }

// FromString wraps s as a String Value.
func FromString(s string) engine.Value { return engine.String{Value: s} }

// FromBool wraps b as a Bool Value.
func FromBool(b bool) engine.Value { return engine.Bool{Value: b} }
