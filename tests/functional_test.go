// Package tests runs whole Afed documents end to end through the document
// engine and the built-in standard packages, the Afed-domain replacement
// for this tree's former funxy-fixture comparison test.
package tests

import (
	"strings"
	"testing"

	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/docmt"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
	"github.com/funvibe/funxy/pkg/stdpkgs/num"
	"github.com/funvibe/funxy/pkg/stdpkgs/prs"
)

func buildRegistry(t *testing.T) *pkgbuild.Registry {
	t.Helper()
	reg := pkgbuild.NewRegistry(config.ProtocolVersion)
	numPkg, err := num.Build()
	if err != nil {
		t.Fatalf("num.Build: %v", err)
	}
	if err := reg.Register(numPkg); err != nil {
		t.Fatalf("registering num: %v", err)
	}
	prsPkg, err := prs.Build()
	if err != nil {
		t.Fatalf("prs.Build: %v", err)
	}
	if err := reg.Register(prsPkg); err != nil {
		t.Fatalf("registering prs: %v", err)
	}
	return reg
}

// render parses src as a Document, resolves the standard packages into its
// top-level scope exactly the way cmd/afed wires a loaded Registry, and
// evaluates and renders it, mirroring the whole CLI pipeline without
// shelling out to a compiled binary.
func render(t *testing.T, src string) (string, int) {
	t.Helper()
	reg := buildRegistry(t)
	doc := docmt.NewDocument(src, "", nil)

	bindings := make(map[string]engine.Handle, len(reg.Bindings()))
	for name, v := range reg.Bindings() {
		bindings[name] = doc.Arena.NewConstant(v)
	}
	doc.Arena.Resolve([]engine.Handle{doc.Root}, bindings)

	errCount := doc.Evaluate()
	return doc.Render(), errCount
}

func TestEndToEndArithmeticAndPackageCalls(t *testing.T) {
	src := "report: { total: num.gcd 12 18 = `old total`, " +
		"prime: prs.is_prime 17 = `old prime` }"
	rendered, errCount := render(t, src)
	if errCount != 0 {
		t.Fatalf("unexpected evaluation errors: %d", errCount)
	}
	if !strings.Contains(rendered, "6") {
		t.Errorf("rendered = %q, expected gcd(12, 18) = 6", rendered)
	}
	if !strings.Contains(rendered, "true") {
		t.Errorf("rendered = %q, expected is_prime(17) = true", rendered)
	}
	if strings.Contains(rendered, "old total") || strings.Contains(rendered, "old prime") {
		t.Errorf("rendered = %q, stale substitution text should have been replaced", rendered)
	}
}

func TestEndToEndLazyIfAndLambda(t *testing.T) {
	src := "double: \\x: x * 2, " +
		"choice: if true (double 21) (double 0) = `old`"
	rendered, errCount := render(t, src)
	if errCount != 0 {
		t.Fatalf("unexpected evaluation errors: %d", errCount)
	}
	if !strings.Contains(rendered, "42") {
		t.Errorf("rendered = %q, expected if(true, double 21, double 0) = 42", rendered)
	}
}

func TestEndToEndArrayReducePipeline(t *testing.T) {
	src := "sum: (prs.primes 20).reduce 0 (\\acc p: acc + p) = `old`"
	rendered, errCount := render(t, src)
	if errCount != 0 {
		t.Fatalf("unexpected evaluation errors: %d", errCount)
	}
	// primes up to 20: 2+3+5+7+11+13+17+19 = 77
	if !strings.Contains(rendered, "77") {
		t.Errorf("rendered = %q, expected the sum of primes up to 20 to be 77", rendered)
	}
}

func TestEndToEndUnresolvedNameSurfacesAsError(t *testing.T) {
	src := "broken: totallyUndefinedName = `old`"
	_, errCount := render(t, src)
	if errCount != 1 {
		t.Fatalf("errCount = %d, want 1 for an unresolved name", errCount)
	}
}

func TestEndToEndClearModeBlanksEveryRecord(t *testing.T) {
	reg := buildRegistry(t)
	doc := docmt.NewDocument("total: num.factorial 5 = `stale`", "", nil)
	bindings := make(map[string]engine.Handle, len(reg.Bindings()))
	for name, v := range reg.Bindings() {
		bindings[name] = doc.Arena.NewConstant(v)
	}
	doc.Arena.Resolve([]engine.Handle{doc.Root}, bindings)
	doc.OnlyClear = true

	if errCount := doc.Evaluate(); errCount != 0 {
		t.Fatalf("Evaluate() with OnlyClear should do no work, got %d errors", errCount)
	}
	if rendered := doc.Render(); strings.Contains(rendered, "stale") {
		t.Errorf("rendered = %q, clear mode should blank every substitution body", rendered)
	}
}
