package engine

import (
	"math"
	"math/big"
	"strconv"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/operator"
)

// Number is the Number variant of §3: either an exact Ratio (signed-64
// numerator, unsigned-64 denominator, always stored in lowest terms with
// denominator >= 1) or a 64-bit Real. The teacher's own Rational type
// (internal/evaluator/object_primitives.go) wraps *big.Rat directly; Afed
// keeps the spec's fixed-width representation but uses *big.Int
// internally (gcd reduction, overflow detection) exactly the way the
// teacher leans on math/big for its BigInt/Rational types.
type Number struct {
	isReal bool
	num    int64
	den    uint64 // only meaningful when !isReal; always >= 1
	real   float64
}

// NewRatioInt builds an exact integer Ratio n/1.
func NewRatioInt(n int64) Number { return Number{num: n, den: 1} }

// NewRatio builds a Ratio from a numerator and denominator, normalizing to
// lowest terms with the sign carried in the numerator. Returns a DomainError
// if den is zero.
func NewRatio(num int64, den int64) (Number, error) {
	if den == 0 {
		return Number{}, &aerr.DomainError{Msg: "denominator is zero"}
	}
	sign := int64(1)
	if (den < 0) != (num < 0) {
		sign = -1
	}
	n := new(big.Int).Abs(big.NewInt(num))
	d := new(big.Int).Abs(big.NewInt(den))
	g := new(big.Int).GCD(nil, nil, n, d)
	if g.Sign() != 0 {
		n.Div(n, g)
		d.Div(d, g)
	}
	if sign < 0 {
		n.Neg(n)
	}
	if !n.IsInt64() || !d.IsUint64() {
		// Overflow beyond the fixed-width representation: fall back to a
		// Real rather than silently truncating. Not specified, but a safer
		// default than wraparound.
		f, _ := new(big.Rat).SetFrac(n, d).Float64()
		return NewReal(f), nil
	}
	return Number{num: n.Int64(), den: d.Uint64()}, nil
}

// NewReal builds a Real.
func NewReal(f float64) Number { return Number{isReal: true, real: f} }

// IsReal reports whether the number is a Real rather than an exact Ratio.
func (n Number) IsReal() bool { return n.isReal }

// Ratio returns the numerator and denominator; only valid when !IsReal().
func (n Number) Ratio() (int64, uint64) { return n.num, n.den }

// Float returns the number as a float64, exactly for Real and via division
// for Ratio.
func (n Number) Float() float64 {
	if n.isReal {
		return n.real
	}
	return float64(n.num) / float64(n.den)
}

func bigRat(n Number) *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(n.num), new(big.Int).SetUint64(n.den))
}

func (Number) Kind() Kind { return KindNumber }

func (n Number) Unary(op operator.Unary) (Value, bool) {
	switch op {
	case operator.Neg:
		if n.isReal {
			return NewReal(-n.real), true
		}
		r, _ := NewRatio(-n.num, int64(n.den))
		return r, true
	}
	return nil, false
}

func (n Number) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	o, ok := other.(Number)
	if !ok {
		return nil, false
	}
	left, right := n, o
	if reversed {
		left, right = right, left
	}
	switch op {
	case operator.Add, operator.Sub, operator.Mul, operator.Div:
		return arith(op, left, right), true
	case operator.Mod:
		return floorMod(left, right), true
	case operator.FloorDiv:
		return floorDiv(left, right), true
	case operator.Pow:
		return power(left, right), true
	case operator.Le:
		return Bool{compareLE(left, right)}, true
	}
	return nil, false
}

func arith(op operator.Binary, a, b Number) Value {
	if a.isReal || b.isReal {
		x, y := a.Float(), b.Float()
		switch op {
		case operator.Add:
			return NewReal(x + y)
		case operator.Sub:
			return NewReal(x - y)
		case operator.Mul:
			return NewReal(x * y)
		case operator.Div:
			if y == 0 {
				return WrapError(&aerr.DomainError{Msg: "division by zero"})
			}
			return NewReal(x / y)
		}
	}
	ra, rb := bigRat(a), bigRat(b)
	res := new(big.Rat)
	switch op {
	case operator.Add:
		res.Add(ra, rb)
	case operator.Sub:
		res.Sub(ra, rb)
	case operator.Mul:
		res.Mul(ra, rb)
	case operator.Div:
		if rb.Sign() == 0 {
			return WrapError(&aerr.DomainError{Msg: "division by zero"})
		}
		res.Quo(ra, rb)
	}
	v, _ := NewRatio(0, 1)
	return ratFromBig(res, v)
}

func ratFromBig(r *big.Rat, fallback Number) Value {
	n := r.Num()
	d := r.Denom()
	if !n.IsInt64() || !d.IsUint64() {
		f, _ := r.Float64()
		return NewReal(f)
	}
	v, err := NewRatio(n.Int64(), new(big.Int).Set(d).Int64())
	if err != nil {
		return WrapError(err)
	}
	return v
}

// floorDiv implements `//`: floor of the exact quotient, stored as a Ratio
// with denominator 1 for Ratio operands (§4.2).
func floorDiv(a, b Number) Value {
	if a.isReal || b.isReal {
		y := b.Float()
		if y == 0 {
			return WrapError(&aerr.DomainError{Msg: "division by zero"})
		}
		return NewReal(math.Floor(a.Float() / y))
	}
	rb := bigRat(b)
	if rb.Sign() == 0 {
		return WrapError(&aerr.DomainError{Msg: "division by zero"})
	}
	q := new(big.Rat).Quo(bigRat(a), rb)
	fl := floorBigRat(q)
	if !fl.IsInt64() {
		f, _ := new(big.Rat).SetInt(fl).Float64()
		return NewReal(f)
	}
	return NewRatioInt(fl.Int64())
}

func floorBigRat(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m) // Euclidean div: m >= 0
	return q
}

// floorMod implements `%`: the non-negative Euclidean remainder (§4.2).
func floorMod(a, b Number) Value {
	if a.isReal || b.isReal {
		y := b.Float()
		if y == 0 {
			return WrapError(&aerr.DomainError{Msg: "modulo by zero"})
		}
		m := math.Mod(a.Float(), y)
		if m < 0 {
			m += math.Abs(y)
		}
		return NewReal(m)
	}
	rb := bigRat(b)
	if rb.Sign() == 0 {
		return WrapError(&aerr.DomainError{Msg: "modulo by zero"})
	}
	ra := bigRat(a)
	q := new(big.Rat).Quo(ra, rb)
	fl := floorBigRat(q)
	rem := new(big.Rat).Sub(ra, new(big.Rat).Mul(rb, new(big.Rat).SetInt(fl)))
	v, _ := NewRatio(0, 1)
	return ratFromBig(rem, v)
}

// power implements `^`. Integer exponentiation of a Ratio stays exact
// (§8's number-law property); non-integer or negative-fractional exponents
// fall back to Real via math.Pow.
func power(base, exp Number) Value {
	if !base.isReal && !exp.isReal && exp.den == 1 {
		n := exp.num
		neg := n < 0
		if neg {
			n = -n
		}
		r := bigRat(base)
		res := new(big.Rat).SetInt64(1)
		b := new(big.Rat).Set(r)
		for n > 0 {
			if n&1 == 1 {
				res.Mul(res, b)
			}
			b.Mul(b, b)
			n >>= 1
		}
		if neg {
			if res.Sign() == 0 {
				return WrapError(&aerr.DomainError{Msg: "division by zero"})
			}
			res.Inv(res)
		}
		v, _ := NewRatio(0, 1)
		return ratFromBig(res, v)
	}
	x, y := base.Float(), exp.Float()
	if x < 0 && y != math.Trunc(y) {
		return WrapError(&aerr.DomainError{Msg: "fractional power of a negative number"})
	}
	return NewReal(math.Pow(x, y))
}

// compareLE implements `≤`, the operator every other ordering comparison
// rewrites onto (§4.1 step 2, §4.2).
func compareLE(a, b Number) bool {
	if !a.isReal && !b.isReal {
		return bigRat(a).Cmp(bigRat(b)) <= 0
	}
	// Mixed or both-Real: compare as floats within the fixed tolerance so
	// that values within config.NumericTolerance of each other are treated
	// as equal (and hence <=) rather than arbitrarily ordered (§3, §9).
	x, y := a.Float(), b.Float()
	if math.Abs(x-y) <= config.NumericTolerance {
		return true
	}
	return x <= y
}

func (Number) Arity(attr string) (int, bool) {
	switch attr {
	case "gcd":
		return 1, true
	case "factorial", "abs", "floor", "ceil":
		return 0, true
	}
	return 0, false
}

func (Number) Help(attr string) (string, bool) {
	switch attr {
	case "gcd":
		return "gcd(other) -> Number\nGreatest common divisor of two integers", true
	case "factorial":
		return "factorial -> Number\nFactorial of a non-negative integer", true
	case "abs":
		return "abs -> Number\nAbsolute value", true
	case "floor":
		return "floor -> Number\nLargest integer not greater than the value", true
	case "ceil":
		return "ceil -> Number\nSmallest integer not less than the value", true
	}
	return "", false
}

func (n Number) Call(attr string, args []Value) Value {
	switch attr {
	case "gcd":
		other, ok := args[0].(Number)
		if !ok {
			return typeMismatch("gcd", "Number", string(args[0].Kind()))
		}
		return n.gcd(other)
	case "factorial":
		return n.factorial()
	case "abs":
		return n.abs()
	case "floor":
		return NewRatioInt(n.floorInt())
	case "ceil":
		neg := Number{isReal: n.isReal, num: -n.num, den: n.den, real: -n.real}
		return NewRatioInt(-neg.floorInt())
	}
	return typeMismatch("$", "Number", "")
}

// gcd is original_source's Number::gcd (src/object/number.rs): both
// operands must be exact integer Ratios; the result carries no sign.
func (n Number) gcd(other Number) Value {
	if n.isReal || other.isReal || n.den != 1 || other.den != 1 {
		return WrapError(&aerr.DomainError{Msg: "gcd requires two integers"})
	}
	a := new(big.Int).Abs(big.NewInt(n.num))
	b := new(big.Int).Abs(big.NewInt(other.num))
	g := new(big.Int).GCD(nil, nil, a, b)
	return NewRatioInt(g.Int64())
}

// factorial is original_source's Number::factorial: defined only for
// non-negative integers.
func (n Number) factorial() Value {
	if n.isReal || n.den != 1 || n.num < 0 {
		return WrapError(&aerr.DomainError{Msg: "can only take factorial of positive integer"})
	}
	result := big.NewInt(1)
	for i := int64(2); i <= n.num; i++ {
		result.Mul(result, big.NewInt(i))
	}
	if !result.IsInt64() {
		f := new(big.Float).SetInt(result)
		v, _ := f.Float64()
		return NewReal(v)
	}
	return NewRatioInt(result.Int64())
}

func (n Number) abs() Value {
	if n.isReal {
		return NewReal(math.Abs(n.real))
	}
	if n.num < 0 {
		return Number{num: -n.num, den: n.den}
	}
	return n
}

// floorInt returns the floor of n as an int64, for the `floor`/`ceil`
// methods (ceil(x) == -floor(-x)).
func (n Number) floorInt() int64 {
	if n.isReal {
		return int64(math.Floor(n.real))
	}
	if n.num >= 0 || n.den == 1 {
		return n.num / int64(n.den)
	}
	return -(((-n.num) + int64(n.den) - 1) / int64(n.den))
}

func (n Number) Display() string {
	if n.isReal {
		return strconv.FormatFloat(n.real, 'g', -1, 64)
	}
	if n.den == 1 {
		return strconv.FormatInt(n.num, 10)
	}
	return strconv.FormatInt(n.num, 10) + " / " + strconv.FormatUint(n.den, 10)
}

// Equal implements the equality law of §3: Ratios compare exactly via
// cross-multiplication, Reals (or mixed Ratio/Real) compare within
// config.NumericTolerance.
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	if !ok {
		return false
	}
	if !n.isReal && !o.isReal {
		return bigRat(n).Cmp(bigRat(o)) == 0
	}
	return math.Abs(n.Float()-o.Float()) <= config.NumericTolerance
}
