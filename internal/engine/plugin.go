package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/funvibe/funxy/internal/operator"
)

// TypeIdentity is the stable identity of a plug-in-registered type (§4.1):
// derived from a textual type name plus the source location where the
// type was registered, hashed deterministically so two plug-ins loaded
// from different compilation units (here: different OS processes, see
// pkg/plugin) never collide on a compiler-assigned type id they don't
// share.
type TypeIdentity struct {
	hash uint64
}

// NewTypeIdentity derives a TypeIdentity from a type's declared name and
// the location (plug-in load path, e.g. a file path or host address) where
// it was registered.
func NewTypeIdentity(name, location string) TypeIdentity {
	sum := sha256.Sum256([]byte(location + "\x00" + name))
	return TypeIdentity{hash: binary.BigEndian.Uint64(sum[:8])}
}

func (t TypeIdentity) Equal(o TypeIdentity) bool { return t.hash == o.hash }

// HostMethods is the small v-table a plug-in-registered opaque type must
// present: the five protocol methods of §4.1 plus Display and Equal.
type HostMethods struct {
	Unary  func(op operator.Unary, self *PluginValue) (Value, bool)
	Binary func(reversed bool, op operator.Binary, self, other *PluginValue) (Value, bool)
	Arity  func(attr string, self *PluginValue) (int, bool)
	Help   func(attr string, self *PluginValue) (string, bool)
	Call   func(attr string, self *PluginValue, args []Value) Value
	Display func(self *PluginValue) string
	Equal  func(self *PluginValue, other Value) bool
}

// PluginValue is the opaque Value variant carrying any plug-in type that
// does not fit the closed built-in set (§3, §9's "dynamic dispatch via
// tagged variants" note): a stable TypeIdentity, an arbitrary payload, and
// a small v-table of the five protocol methods plus Display and Equal.
type PluginValue struct {
	TypeName string
	Identity TypeIdentity
	Payload  interface{}
	Methods  HostMethods
}

func (PluginValue) Kind() Kind { return KindPlugin }

func (p *PluginValue) Unary(op operator.Unary) (Value, bool) {
	if p.Methods.Unary == nil {
		return nil, false
	}
	return p.Methods.Unary(op, p)
}

func (p *PluginValue) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	if p.Methods.Binary == nil {
		return nil, false
	}
	o, ok := other.(*PluginValue)
	if !ok || !o.Identity.Equal(p.Identity) {
		return nil, false
	}
	return p.Methods.Binary(reversed, op, p, o)
}

func (p *PluginValue) Arity(attr string) (int, bool) {
	if p.Methods.Arity == nil {
		return 0, false
	}
	return p.Methods.Arity(attr, p)
}

func (p *PluginValue) Help(attr string) (string, bool) {
	if p.Methods.Help == nil {
		return "", false
	}
	return p.Methods.Help(attr, p)
}

func (p *PluginValue) Call(attr string, args []Value) Value {
	if p.Methods.Call == nil {
		return typeMismatch("$", p.TypeName, "")
	}
	return p.Methods.Call(attr, p, args)
}

func (p *PluginValue) Display() string {
	if p.Methods.Display != nil {
		return p.Methods.Display(p)
	}
	return fmt.Sprintf("<%s>", p.TypeName)
}

func (p *PluginValue) Equal(other Value) bool {
	if p.Methods.Equal != nil {
		return p.Methods.Equal(p, other)
	}
	o, ok := other.(*PluginValue)
	return ok && o == p
}
