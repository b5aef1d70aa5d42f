// Package prs implements Afed's built-in "prs" standard package: prime
// number theory over natural numbers, grounded on original_source's
// src/libs/prs.rs (PrimeSieve, PrimeFactors, and the create_bltns! block
// listing is_prime/primes/prime_factors/is_sqfree/radical/euler_totient/
// divisors/divisor_sum/is_perfect).
package prs

import (
	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/pkg/pkgbuild"
)

const version = "1"

// Build constructs the "prs" Package.
func Build() (*pkgbuild.Package, error) {
	tree := pkgbuild.Map(map[string]engine.Value{
		"is_prime": pkgbuild.Func("prs.is_prime",
			"prs.is_prime (x) -> Bool\nReturns whether x is prime", 1, wrap1(isPrime, toBool)),
		"primes": pkgbuild.Func("prs.primes",
			"prs.primes (max) -> Array\nAll primes up to and including max", 1, wrap1(primes, toNatArray)),
		"prime_factors": pkgbuild.Func("prs.prime_factors",
			"prs.prime_factors (x) -> Array\nPairs [p, k] of prime factors and their powers, ascending by p", 1, wrap1(primeFactors, toFactorArray)),
		"is_sqfree": pkgbuild.Func("prs.is_sqfree",
			"prs.is_sqfree (x) -> Bool\nReturns whether x is square-free", 1, wrap1(isSquareFree, toBool)),
		"radical": pkgbuild.Func("prs.radical",
			"prs.radical (x) -> Number\nSmallest square-free s such that x divides some power of s", 1, wrap1(radical, toNat)),
		"euler_totient": pkgbuild.Func("prs.euler_totient",
			"prs.euler_totient (x) -> Number\nEuler totient function of x", 1, wrap1(eulerTotient, toNat)),
		"divisors": pkgbuild.Func("prs.divisors",
			"prs.divisors (x) -> Array\nAll natural numbers dividing x", 1, wrap1(divisors, toNatArray)),
		"divisor_sum": pkgbuild.Func("prs.divisor_sum",
			"prs.divisor_sum (z) (x) -> Number\nSum of the z-th powers of the divisors of x", 2, divisorSum),
		"is_perfect": pkgbuild.Func("prs.is_perfect",
			"prs.is_perfect (x) -> Bool\nReturns whether x is a perfect number", 1, wrap1(isPerfect, toBool)),
	})
	return &pkgbuild.Package{Name: "prs", Version: version, Tree: tree}, nil
}

// natural converts a Value to a non-negative Ratio integer, or reports the
// DomainError every prs function returns for a non-natural argument.
func natural(v engine.Value) (uint64, engine.Value) {
	n, ok := v.(engine.Number)
	if !ok || n.IsReal() {
		return 0, engine.WrapError(&aerr.TypeMismatchError{Op: "prs", T1: "Number", T2: string(v.Kind())})
	}
	num, den := n.Ratio()
	if den != 1 || num < 0 {
		return 0, engine.WrapError(&aerr.DomainError{Msg: "expected a natural number"})
	}
	return uint64(num), nil
}

func wrap1(fn func(uint64) interface{}, conv func(interface{}) engine.Value) func([]engine.Value) engine.Value {
	return func(args []engine.Value) engine.Value {
		x, errv := natural(args[0])
		if errv != nil {
			return errv
		}
		return conv(fn(x))
	}
}

func toBool(v interface{}) engine.Value    { return engine.Bool{Value: v.(bool)} }
func toNat(v interface{}) engine.Value     { return engine.NewRatioInt(int64(v.(uint64))) }
func toNatArray(v interface{}) engine.Value {
	ns := v.([]uint64)
	elems := make([]engine.Value, len(ns))
	for i, n := range ns {
		elems[i] = engine.NewRatioInt(int64(n))
	}
	return engine.NewArray(elems)
}
func toFactorArray(v interface{}) engine.Value {
	fs := v.([][2]uint64)
	elems := make([]engine.Value, len(fs))
	for i, f := range fs {
		elems[i] = engine.NewArray([]engine.Value{
			engine.NewRatioInt(int64(f[0])),
			engine.NewRatioInt(int64(f[1])),
		})
	}
	return engine.NewArray(elems)
}

func isPrime(x uint64) interface{} {
	switch {
	case x < 2:
		return false
	case x == 2 || x == 3:
		return true
	case x%2 == 0 || x%3 == 0:
		return false
	}
	for p := uint64(5); p*p <= x; p += 6 {
		if x%p == 0 || x%(p+2) == 0 {
			return false
		}
	}
	return true
}

// primeSieve returns every prime up to and including max, by the same
// incremental sieve original_source's PrimeSieve iterator performs.
func primeSieve(max uint64) []uint64 {
	n := max + 1
	if n < 2 {
		n = 2
	}
	composite := make([]bool, n)
	var out []uint64
	for i := uint64(2); i < n; i++ {
		if composite[i] {
			continue
		}
		out = append(out, i)
		for j := i * i; j < n; j += i {
			composite[j] = true
		}
	}
	return out
}

func primes(max uint64) interface{} { return primeSieve(max) }

// primeFactorize returns the (prime, exponent) pairs of x in ascending
// order of prime, mirroring original_source's PrimeFactors iterator
// (trial division by 2, 3, then every integer of the form 6k+/-1).
func primeFactorize(x uint64) [][2]uint64 {
	var out [][2]uint64
	n := x
	for _, p := range []uint64{2, 3} {
		if n%p == 0 {
			exp := uint64(0)
			for n%p == 0 {
				n /= p
				exp++
			}
			out = append(out, [2]uint64{p, exp})
		}
	}
	for p := uint64(5); p*p <= n; {
		if n%p == 0 {
			exp := uint64(0)
			for n%p == 0 {
				n /= p
				exp++
			}
			out = append(out, [2]uint64{p, exp})
		}
		if p%6 == 1 {
			p += 4
		} else {
			p += 2
		}
	}
	if n > 1 {
		out = append(out, [2]uint64{n, 1})
	}
	return out
}

func primeFactors(x uint64) interface{} { return primeFactorize(x) }

func isSquareFree(x uint64) interface{} {
	if x == 0 {
		return false
	}
	for _, f := range primeFactorize(x) {
		if f[1] != 1 {
			return false
		}
	}
	return true
}

func radical(x uint64) interface{} {
	if x == 0 {
		return uint64(0)
	}
	r := uint64(1)
	for _, f := range primeFactorize(x) {
		r *= f[0]
	}
	return r
}

func eulerTotient(x uint64) interface{} {
	t := uint64(1)
	for _, f := range primeFactorize(x) {
		p, k := f[0], f[1]
		t *= (p - 1) * ipow(p, k-1)
	}
	return t
}

func divisors(x uint64) interface{} {
	divs := []uint64{1}
	for _, f := range primeFactorize(x) {
		p, k := f[0], f[1]
		newDivs := append([]uint64{}, divs...)
		for i := uint64(0); i < k; i++ {
			for j := range divs {
				divs[j] *= p
			}
			newDivs = append(newDivs, divs...)
		}
		divs = newDivs
	}
	return divs
}

func divisorSum(args []engine.Value) engine.Value {
	z, errv := natural(args[0])
	if errv != nil {
		return errv
	}
	x, errv := natural(args[1])
	if errv != nil {
		return errv
	}
	total := uint64(1)
	for _, f := range primeFactorize(x) {
		p, k := f[0], f[1]
		ppow := ipow(p, z)
		if ppow == 1 {
			total *= k + 1 // z == 0: every divisor contributes 1
			continue
		}
		total *= (ipow(ppow, k+1) - 1) / (ppow - 1)
	}
	return engine.NewRatioInt(int64(total))
}

func isPerfect(x uint64) interface{} {
	sum := divisorSum([]engine.Value{engine.NewRatioInt(1), engine.NewRatioInt(int64(x))})
	n, ok := sum.(engine.Number)
	if !ok {
		return false
	}
	num, _ := n.Ratio()
	return uint64(num) == 2*x
}

func ipow(base, exp uint64) uint64 {
	r := uint64(1)
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}
