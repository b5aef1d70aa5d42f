// Package operator defines the closed set of unary and binary operators
// (§4.2 of the specification): their textual symbols, precedence,
// associativity, and the fixed dispatch order they travel through Value.
package operator

// Unary is one of the two unary operators.
type Unary int

const (
	Not Unary = iota
	Neg
)

// Binary is one of the binary operators. The declaration order is not
// the precedence order; precedence comes from Precedence().
type Binary int

const (
	Add Binary = iota
	Sub
	Mul
	Div
	Mod
	FloorDiv
	Pow
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
	Apply
)

// Assoc describes associativity for Pratt-style parsing.
type Assoc int

const (
	LeftAssoc Assoc = iota
	RightAssoc
)

const unaryPrecedence = 90

// UnaryPrecedence returns the fixed precedence of unary operators.
func UnaryPrecedence() int { return unaryPrecedence }

type binaryInfo struct {
	symbol string
	prec   int
	assoc  Assoc
}

var binaryTable = map[Binary]binaryInfo{
	Pow:      {"^", 100, RightAssoc},
	Mul:      {"*", 75, LeftAssoc},
	Div:      {"/", 75, LeftAssoc},
	Mod:      {"%", 75, LeftAssoc},
	FloorDiv: {"//", 75, LeftAssoc},
	Add:      {"+", 50, LeftAssoc},
	Sub:      {"-", 50, LeftAssoc},
	Lt:       {"<", 40, LeftAssoc},
	Le:       {"≤", 40, LeftAssoc},
	Gt:       {">", 40, LeftAssoc},
	Ge:       {"≥", 40, LeftAssoc},
	Eq:       {"=", 40, LeftAssoc},
	Ne:       {"≠", 40, LeftAssoc},
	And:      {"&&", 36, LeftAssoc},
	Or:       {"||", 35, LeftAssoc},
	Apply:    {"$", 10, RightAssoc},
}

var unarySymbols = map[Unary]string{
	Not: "!",
	Neg: "-",
}

// Symbol returns the canonical textual form of a binary operator.
func (b Binary) Symbol() string { return binaryTable[b].symbol }

// Precedence returns the binding power of a binary operator; higher binds
// tighter.
func (b Binary) Precedence() int { return binaryTable[b].prec }

// Associativity returns how chains of this operator nest.
func (b Binary) Associativity() Assoc { return binaryTable[b].assoc }

// Symbol returns the canonical textual form of a unary operator.
func (u Unary) Symbol() string { return unarySymbols[u] }

// allBinarySymbols is ordered longest-first so textual lexing can do a
// longest-match on symbol prefix, as §4.2 specifies.
var allBinarySymbols []string

func init() {
	seen := map[string]bool{}
	for _, info := range binaryTable {
		if !seen[info.symbol] {
			allBinarySymbols = append(allBinarySymbols, info.symbol)
			seen[info.symbol] = true
		}
	}
	for _, s := range unarySymbols {
		if !seen[s] {
			allBinarySymbols = append(allBinarySymbols, s)
			seen[s] = true
		}
	}
	// Longest-match first: stable insertion sort by byte length, descending
	// (the table is tiny). Symbols of equal length keep the order the map
	// iteration above produced, which is not fixed from run to run.
	for i := 1; i < len(allBinarySymbols); i++ {
		for j := i; j > 0 && len(allBinarySymbols[j]) > len(allBinarySymbols[j-1]); j-- {
			allBinarySymbols[j], allBinarySymbols[j-1] = allBinarySymbols[j-1], allBinarySymbols[j]
		}
	}
}

// Symbols returns every operator symbol, longest first, for the lexer's
// longest-match scan.
func Symbols() []string {
	out := make([]string, len(allBinarySymbols))
	copy(out, allBinarySymbols)
	return out
}

// LookupBinary finds the Binary operator for a textual symbol.
func LookupBinary(sym string) (Binary, bool) {
	for b, info := range binaryTable {
		if info.symbol == sym {
			return b, true
		}
	}
	return 0, false
}

// LookupUnary finds the Unary operator for a textual symbol.
func LookupUnary(sym string) (Unary, bool) {
	for u, s := range unarySymbols {
		if s == sym {
			return u, true
		}
	}
	return 0, false
}

// IsComparison reports whether b is one of the four ordering operators
// that dispatch rewrites onto Le (§4.1 step 2).
func IsComparison(b Binary) bool {
	switch b {
	case Lt, Le, Gt, Ge:
		return true
	}
	return false
}
