package prs

import (
	"testing"

	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

func attr(t *testing.T, tree engine.Value, name string) engine.Value {
	t.Helper()
	m, ok := tree.(engine.Map)
	if !ok {
		t.Fatalf("expected Map tree, got %#v", tree)
	}
	v, ok := m.Attr(name)
	if !ok {
		t.Fatalf("prs package has no %q", name)
	}
	return v
}

func natValues(ns ...int64) []engine.Value {
	out := make([]engine.Value, len(ns))
	for i, n := range ns {
		out[i] = pkgbuild.FromInt(n)
	}
	return out
}

func boolOf(t *testing.T, v engine.Value) bool {
	t.Helper()
	b, ok := v.(engine.Bool)
	if !ok {
		t.Fatalf("expected Bool, got %#v", v)
	}
	return b.Value
}

func intOf(t *testing.T, v engine.Value) int64 {
	t.Helper()
	n, ok := v.(engine.Number)
	if !ok {
		t.Fatalf("expected Number, got %#v", v)
	}
	num, den := n.Ratio()
	if den != 1 {
		t.Fatalf("expected integer, got %d/%d", num, den)
	}
	return num
}

func TestIsPrime(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "is_prime")
	cases := map[int64]bool{0: false, 1: false, 2: true, 3: true, 4: false, 17: true, 18: false}
	for n, want := range cases {
		got := boolOf(t, fn.Call("", natValues(n)))
		if got != want {
			t.Errorf("is_prime(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestPrimes(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "primes")
	got := fn.Call("", natValues(10))
	arr, ok := got.(engine.Array)
	if !ok {
		t.Fatalf("expected Array, got %#v", got)
	}
	want := []int64{2, 3, 5, 7}
	if len(arr.Elems) != len(want) {
		t.Fatalf("primes(10) = %v, want %v", arr.Elems, want)
	}
	for i, e := range arr.Elems {
		if intOf(t, e) != want[i] {
			t.Errorf("primes(10)[%d] = %d, want %d", i, intOf(t, e), want[i])
		}
	}
}

func TestPrimeFactors(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "prime_factors")
	got := fn.Call("", natValues(360)) // 2^3 * 3^2 * 5
	arr, ok := got.(engine.Array)
	if !ok {
		t.Fatalf("expected Array, got %#v", got)
	}
	want := [][2]int64{{2, 3}, {3, 2}, {5, 1}}
	if len(arr.Elems) != len(want) {
		t.Fatalf("prime_factors(360) = %v, want %v", arr.Elems, want)
	}
	for i, e := range arr.Elems {
		pair, ok := e.(engine.Array)
		if !ok || len(pair.Elems) != 2 {
			t.Fatalf("prime_factors(360)[%d] not a 2-pair: %#v", i, e)
		}
		if intOf(t, pair.Elems[0]) != want[i][0] || intOf(t, pair.Elems[1]) != want[i][1] {
			t.Errorf("prime_factors(360)[%d] = (%d, %d), want (%d, %d)",
				i, intOf(t, pair.Elems[0]), intOf(t, pair.Elems[1]), want[i][0], want[i][1])
		}
	}
}

func TestDivisorsAndPerfect(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	divisors := attr(t, pkg.Tree, "divisors")
	got := divisors.Call("", natValues(6))
	arr, ok := got.(engine.Array)
	if !ok {
		t.Fatalf("expected Array, got %#v", got)
	}
	sum := int64(0)
	for _, e := range arr.Elems {
		sum += intOf(t, e)
	}
	if sum != 12 {
		t.Errorf("sum of divisors(6) = %d, want 12", sum)
	}

	isPerfect := attr(t, pkg.Tree, "is_perfect")
	if !boolOf(t, isPerfect.Call("", natValues(6))) {
		t.Error("is_perfect(6) = false, want true")
	}
	if boolOf(t, isPerfect.Call("", natValues(8))) {
		t.Error("is_perfect(8) = true, want false")
	}
}

func TestIsSquareFreeAndRadical(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sqfree := attr(t, pkg.Tree, "is_sqfree")
	if !boolOf(t, sqfree.Call("", natValues(10))) {
		t.Error("is_sqfree(10) = false, want true")
	}
	if boolOf(t, sqfree.Call("", natValues(12))) {
		t.Error("is_sqfree(12) = true, want false")
	}

	radical := attr(t, pkg.Tree, "radical")
	if v := intOf(t, radical.Call("", natValues(12))); v != 6 {
		t.Errorf("radical(12) = %d, want 6", v)
	}
}

func TestDivisorSumRejectsNonNatural(t *testing.T) {
	pkg, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fn := attr(t, pkg.Tree, "divisor_sum")
	got := fn.Call("", []engine.Value{pkgbuild.FromInt(-1), pkgbuild.FromInt(6)})
	if !engine.IsError(got) {
		t.Errorf("expected DomainError for negative argument, got %#v", got)
	}
}
