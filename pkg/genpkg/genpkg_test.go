package genpkg

import (
	"strings"
	"testing"
)

func TestInspectFindsBindableStringsFunctions(t *testing.T) {
	funcs, err := Inspect("strings")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	names := map[string]Func{}
	for _, f := range funcs {
		names[f.Name] = f
	}
	toUpper, ok := names["ToUpper"]
	if !ok {
		t.Fatal("expected strings.ToUpper to be bindable")
	}
	if len(toUpper.ParamKinds) != 1 || toUpper.ParamKinds[0] != kindString {
		t.Errorf("ToUpper params = %v, want one string param", toUpper.ParamKinds)
	}
	if toUpper.ResultKind != kindString {
		t.Errorf("ToUpper result kind = %v, want string", toUpper.ResultKind)
	}

	contains, ok := names["Contains"]
	if !ok {
		t.Fatal("expected strings.Contains to be bindable")
	}
	if len(contains.ParamKinds) != 2 || contains.ResultKind != kindBool {
		t.Errorf("Contains signature not bound as (string, string) -> bool: %+v", contains)
	}

	if _, ok := names["Map"]; ok {
		t.Error("strings.Map takes a func argument and should not be bindable")
	}
}

func TestInspectSortsByName(t *testing.T) {
	funcs, err := Inspect("strings")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	for i := 1; i < len(funcs); i++ {
		if funcs[i].Name < funcs[i-1].Name {
			t.Fatalf("Inspect result not sorted at %d: %q before %q", i, funcs[i-1].Name, funcs[i].Name)
		}
	}
}

func TestGenerateProducesCompilableShapedSource(t *testing.T) {
	src, err := Generate("strings", "strpkg")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(src, "package strpkg") {
		t.Errorf("generated source missing package clause: %q", src)
	}
	if !strings.Contains(src, `src "strings"`) {
		t.Errorf("generated source missing source import: %q", src)
	}
	if !strings.Contains(src, "func Build() (*pkgbuild.Package, error)") {
		t.Errorf("generated source missing Build function: %q", src)
	}
	if !strings.Contains(src, "callToUpper") {
		t.Errorf("generated source missing a wrapper for ToUpper: %q", src)
	}
}
