// Package num implements Afed's built-in "num" standard package,
// grounded on original_source's src/libs/num.rs and src/pkgs/math.rs:
// thin wrappers that forward to the matching method already implemented
// on engine.Number (§8 scenario 6: "num.gcd 12 18" and "num.factorial 5").
package num

import (
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

const version = "1"

// Build constructs the "num" Package, following declare_pkg!'s pattern of
// forwarding each wrapper straight to the receiver's own method rather
// than reimplementing the arithmetic at the package layer.
func Build() (*pkgbuild.Package, error) {
	tree := pkgbuild.Map(map[string]engine.Value{
		"gcd":       pkgbuild.Func("num.gcd", "num.gcd (a) (b) -> Number\nGreatest common divisor of a and b", 2, gcd),
		"factorial": pkgbuild.Func("num.factorial", "num.factorial (x) -> Number\nFactorial of a non-negative integer", 1, factorial),
		"abs":       pkgbuild.Func("num.abs", "num.abs (x) -> Number\nAbsolute value of x", 1, unaryMethod("abs")),
		"floor":     pkgbuild.Func("num.floor", "num.floor (x) -> Number\nLargest integer not greater than x", 1, unaryMethod("floor")),
		"ceil":      pkgbuild.Func("num.ceil", "num.ceil (x) -> Number\nSmallest integer not less than x", 1, unaryMethod("ceil")),
	})
	return &pkgbuild.Package{Name: "num", Version: version, Tree: tree}, nil
}

func gcd(args []engine.Value) engine.Value {
	return engine.EvalAccess(args[0], []string{"gcd"}, []engine.Value{args[1]})
}

func factorial(args []engine.Value) engine.Value {
	return engine.EvalAccess(args[0], []string{"factorial"}, nil)
}

func unaryMethod(name string) func([]engine.Value) engine.Value {
	return func(args []engine.Value) engine.Value {
		return engine.EvalAccess(args[0], []string{name}, nil)
	}
}
