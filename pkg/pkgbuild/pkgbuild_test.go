package pkgbuild

import (
	"testing"

	"github.com/funvibe/funxy/internal/engine"
)

func TestRegistryRejectsVersionMismatch(t *testing.T) {
	reg := NewRegistry("1")
	err := reg.Register(&Package{Name: "num", Version: "2", Tree: Map(nil)})
	if err == nil {
		t.Fatal("expected version mismatch error")
	}
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	reg := NewRegistry("1")
	if err := reg.Register(&Package{Name: "num", Version: "1", Tree: Map(nil)}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register(&Package{Name: "num", Version: "1", Tree: Map(nil)}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRegistryBindingsMergesGlobals(t *testing.T) {
	reg := NewRegistry("1")
	pkg := &Package{
		Name:    "num",
		Version: "1",
		Tree:    Map(map[string]engine.Value{"gcd": FromInt(1)}),
		Globals: map[string]engine.Value{"pi": FromFloat(3.14)},
	}
	if err := reg.Register(pkg); err != nil {
		t.Fatalf("register: %v", err)
	}
	bindings := reg.Bindings()
	if _, ok := bindings["num"]; !ok {
		t.Error("expected package name bound to its tree")
	}
	if _, ok := bindings["pi"]; !ok {
		t.Error("expected global name merged into bindings")
	}
}

func TestFuncArityMismatch(t *testing.T) {
	fn := Func("add", "add(a, b) -> Number", 2, func(args []engine.Value) engine.Value {
		a, _ := ToInt(args[0])
		b, _ := ToInt(args[1])
		return FromInt(a + b)
	})
	result := fn.Call("", []engine.Value{FromInt(1)})
	if !engine.IsError(result) {
		t.Errorf("expected arity error Value, got %#v", result)
	}
}

func TestFuncCall(t *testing.T) {
	fn := Func("add", "add(a, b) -> Number", 2, func(args []engine.Value) engine.Value {
		a, _ := ToInt(args[0])
		b, _ := ToInt(args[1])
		return FromInt(a + b)
	})
	result := fn.Call("", []engine.Value{FromInt(2), FromInt(3)})
	n, ok := result.(engine.Number)
	if !ok {
		t.Fatalf("expected Number result, got %#v", result)
	}
	v, _ := n.Ratio()
	if v != 5 {
		t.Errorf("add(2, 3) = %d, want 5", v)
	}
}

func TestFuncArityAttr(t *testing.T) {
	fn := Func("add", "add(a, b) -> Number", 2, func(args []engine.Value) engine.Value { return FromInt(0) })
	result := fn.Call("arity", nil)
	n, ok := result.(engine.Number)
	if !ok {
		t.Fatalf("expected Number result, got %#v", result)
	}
	v, _ := n.Ratio()
	if v != 2 {
		t.Errorf("arity = %d, want 2", v)
	}
}

func TestToIntRejectsNonIntegerRatio(t *testing.T) {
	half, err := engine.NewRatio(1, 2)
	if err != nil {
		t.Fatalf("NewRatio: %v", err)
	}
	if _, ok := ToInt(half); ok {
		t.Error("ToInt should reject a non-integer ratio")
	}
}

func TestToIntRejectsReal(t *testing.T) {
	if _, ok := ToInt(FromFloat(1.0)); ok {
		t.Error("ToInt should reject a Real Number")
	}
}

func TestConversionRoundTrips(t *testing.T) {
	if s, ok := ToString(FromString("hi")); !ok || s != "hi" {
		t.Errorf("ToString round trip failed: %q, %v", s, ok)
	}
	if b, ok := ToBool(FromBool(true)); !ok || !b {
		t.Errorf("ToBool round trip failed: %v, %v", b, ok)
	}
	if f, ok := ToFloat(FromFloat(2.5)); !ok || f != 2.5 {
		t.Errorf("ToFloat round trip failed: %v, %v", f, ok)
	}
}
