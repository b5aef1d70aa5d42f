package num

import (
	"testing"

	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

func ratio(t *testing.T, v engine.Value) int64 {
	t.Helper()
	n, ok := v.(engine.Number)
	if !ok {
		t.Fatalf("expected Number, got %#v", v)
	}
	num, den := n.Ratio()
	if den != 1 {
		t.Fatalf("expected integer ratio, got %d/%d", num, den)
	}
	return num
}

func attr(t *testing.T, tree engine.Value, name string) engine.Value {
	t.Helper()
	m, ok := tree.(engine.Map)
	if !ok {
		t.Fatalf("expected Map tree, got %#v", tree)
	}
	v, ok := m.Attr(name)
	if !ok {
		t.Fatalf("num package has no %q", name)
	}
	return v
}

func TestBuildExposesName(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pkg.Name != "num" {
		t.Errorf("pkg.Name = %q, want num", pkg.Name)
	}
}

func TestGCD(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "gcd")
	got := fn.Call("", []engine.Value{pkgbuild.FromInt(12), pkgbuild.FromInt(18)})
	if v := ratio(t, got); v != 6 {
		t.Errorf("gcd(12, 18) = %d, want 6", v)
	}
}

func TestFactorial(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "factorial")
	got := fn.Call("", []engine.Value{pkgbuild.FromInt(5)})
	if v := ratio(t, got); v != 120 {
		t.Errorf("factorial(5) = %d, want 120", v)
	}
}

func TestAbsFloorCeil(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	abs := attr(t, pkg.Tree, "abs")
	if v := ratio(t, abs.Call("", []engine.Value{pkgbuild.FromInt(-7)})); v != 7 {
		t.Errorf("abs(-7) = %d, want 7", v)
	}

	half, err := engine.NewRatio(5, 2)
	if err != nil {
		t.Fatalf("NewRatio: %v", err)
	}
	floor := attr(t, pkg.Tree, "floor")
	if v := ratio(t, floor.Call("", []engine.Value{half})); v != 2 {
		t.Errorf("floor(5/2) = %d, want 2", v)
	}
	ceil := attr(t, pkg.Tree, "ceil")
	if v := ratio(t, ceil.Call("", []engine.Value{half})); v != 3 {
		t.Errorf("ceil(5/2) = %d, want 3", v)
	}
}
