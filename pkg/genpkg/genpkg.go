// Package genpkg generates a pkg/stdpkgs-shaped Go source file binding the
// exported scalar functions of an arbitrary Go package into a Package Afed
// can load at build time, grounded on the teacher's internal/ext/inspector.go
// (golang.org/x/tools/go/packages type inspection) and internal/ext/codegen.go
// (text/template-based Go source emission), trimmed to the scalar-function
// subset SPEC_FULL.md's DOMAIN STACK calls for — the teacher's own binder
// additionally handles bound Go types, generics, and struct fields, none of
// which a Package tree's flat name->Value shape needs.
package genpkg

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

// Func describes one exported Go function this tool can bind: every
// parameter and result must be one of the scalar kinds supported below
// (int64-like, float64-like, string, bool), with an optional trailing
// error result.
type Func struct {
	Name       string
	ParamKinds []scalarKind
	ResultKind scalarKind
	HasError   bool
}

type scalarKind int

const (
	kindUnsupported scalarKind = iota
	kindInt
	kindFloat
	kindString
	kindBool
)

// Inspect loads importPath with golang.org/x/tools/go/packages and returns
// every exported top-level function whose signature is bindable.
func Inspect(importPath string) ([]Func, error) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo}
	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("package %s not found", importPath)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("loading %s: %s", importPath, pkg.Errors[0])
	}

	scope := pkg.Types.Scope()
	var out []Func
	for _, name := range scope.Names() {
		if !types.Object(scope.Lookup(name)).Exported() {
			continue
		}
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Recv() != nil || sig.Variadic() {
			continue
		}
		bound, ok := bindSignature(sig)
		if !ok {
			continue
		}
		bound.Name = name
		out = append(out, bound)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func bindSignature(sig *types.Signature) (Func, bool) {
	var f Func
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		k := classify(params.At(i).Type())
		if k == kindUnsupported {
			return Func{}, false
		}
		f.ParamKinds = append(f.ParamKinds, k)
	}
	results := sig.Results()
	switch results.Len() {
	case 1:
		k := classify(results.At(0).Type())
		if k == kindUnsupported {
			return Func{}, false
		}
		f.ResultKind = k
	case 2:
		k := classify(results.At(0).Type())
		if k == kindUnsupported || !isError(results.At(1).Type()) {
			return Func{}, false
		}
		f.ResultKind = k
		f.HasError = true
	default:
		return Func{}, false
	}
	return f, true
}

func isError(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && named.Obj().Pkg() == nil && named.Obj().Name() == "error"
}

func classify(t types.Type) scalarKind {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return kindUnsupported
	}
	switch basic.Info() {
	case types.IsInteger:
		return kindInt
	case types.IsFloat:
		return kindFloat
	case types.IsString:
		return kindString
	case types.IsBoolean:
		return kindBool
	}
	return kindUnsupported
}

const packageTemplate = `// Code generated by genpkg from {{.ImportPath}}. DO NOT EDIT.
package {{.PkgName}}

import (
	src "{{.ImportPath}}"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

const version = "1"

// Build constructs the generated Package wrapping {{.ImportPath}}.
func Build() (*pkgbuild.Package, error) {
	tree := pkgbuild.Map(map[string]engine.Value{
{{- range .Funcs}}
		{{printf "%q" .Name}}: pkgbuild.Func({{printf "%q" .Name}}, {{printf "%q" .Name}}, {{len .ParamKinds}}, call{{.Name}}),
{{- end}}
	})
	return &pkgbuild.Package{Name: {{printf "%q" .PkgName}}, Version: version, Tree: tree}, nil
}
{{range .Funcs}}
func call{{.Name}}(args []engine.Value) engine.Value {
{{- $name := .Name}}
{{- range $i, $k := .ParamKinds}}
	a{{$i}}, ok{{$i}} := {{toGo $k (printf "args[%d]" $i)}}
	if !ok{{$i}} {
		return engine.WrapError(&aerr.TypeMismatchError{Op: {{printf "%q" $name}}})
	}
{{- end}}
{{- if .HasError}}
	r, err := src.{{.Name}}({{argList .ParamKinds}})
	if err != nil {
		return engine.WrapError(err)
	}
	return {{fromGo .ResultKind "r"}}
{{- else}}
	return {{fromGo .ResultKind (printf "src.%s(%s)" .Name (argList .ParamKinds))}}
{{- end}}
}
{{end}}
`

var tmplFuncs = template.FuncMap{
	"toGo": func(k scalarKind, expr string) string {
		switch k {
		case kindInt:
			return fmt.Sprintf("pkgbuild.ToInt(%s)", expr)
		case kindFloat:
			return fmt.Sprintf("pkgbuild.ToFloat(%s)", expr)
		case kindString:
			return fmt.Sprintf("pkgbuild.ToString(%s)", expr)
		case kindBool:
			return fmt.Sprintf("pkgbuild.ToBool(%s)", expr)
		}
		return expr
	},
	"fromGo": func(k scalarKind, expr string) string {
		switch k {
		case kindInt:
			return fmt.Sprintf("pkgbuild.FromInt(int64(%s))", expr)
		case kindFloat:
			return fmt.Sprintf("pkgbuild.FromFloat(float64(%s))", expr)
		case kindString:
			return fmt.Sprintf("pkgbuild.FromString(%s)", expr)
		case kindBool:
			return fmt.Sprintf("pkgbuild.FromBool(%s)", expr)
		}
		return expr
	},
	"argList": func(kinds []scalarKind) string {
		names := make([]string, len(kinds))
		for i := range kinds {
			names[i] = fmt.Sprintf("a%d", i)
		}
		return strings.Join(names, ", ")
	},
}

// Generate renders the full Go source for a Package binding importPath's
// exported scalar functions, to be placed at pkg/stdpkgs/<pkgName>.
func Generate(importPath, pkgName string) (string, error) {
	funcs, err := Inspect(importPath)
	if err != nil {
		return "", err
	}
	t, err := template.New("pkg").Funcs(tmplFuncs).Parse(packageTemplate)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	err = t.Execute(&b, struct {
		ImportPath string
		PkgName    string
		Funcs      []Func
	}{importPath, pkgName, funcs})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
