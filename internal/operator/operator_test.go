package operator

import "testing"

func TestSymbolsLongestFirst(t *testing.T) {
	syms := Symbols()
	if len(syms) == 0 {
		t.Fatal("Symbols returned nothing")
	}
	for i := 1; i < len(syms); i++ {
		if len(syms[i]) > len(syms[i-1]) {
			t.Fatalf("Symbols() not longest-first at %d: %q before %q", i, syms[i-1], syms[i])
		}
	}
	foundFloorDiv := false
	for _, s := range syms {
		if s == "//" {
			foundFloorDiv = true
		}
	}
	if !foundFloorDiv {
		t.Fatal("expected \"//\" among operator symbols so the lexer can longest-match it ahead of \"/\"")
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for b := Add; b <= Apply; b++ {
		sym := b.Symbol()
		if sym == "" {
			continue
		}
		got, ok := LookupBinary(sym)
		if !ok || got != b {
			t.Errorf("LookupBinary(%q) = %v, %v; want %v, true", sym, got, ok, b)
		}
	}
	for _, u := range []Unary{Not, Neg} {
		got, ok := LookupUnary(u.Symbol())
		if !ok || got != u {
			t.Errorf("LookupUnary(%q) = %v, %v; want %v, true", u.Symbol(), got, ok, u)
		}
	}
}

func TestPrecedenceTable(t *testing.T) {
	if Pow.Precedence() <= Mul.Precedence() {
		t.Error("^ must bind tighter than *")
	}
	if Mul.Precedence() <= Add.Precedence() {
		t.Error("* must bind tighter than +")
	}
	if Add.Precedence() <= And.Precedence() {
		t.Error("+ must bind tighter than &&")
	}
	if And.Precedence() <= Or.Precedence() {
		t.Error("&& must bind tighter than ||")
	}
	if Pow.Associativity() != RightAssoc {
		t.Error("^ should be right-associative")
	}
	if Add.Associativity() != LeftAssoc {
		t.Error("+ should be left-associative")
	}
}

func TestIsComparison(t *testing.T) {
	for _, b := range []Binary{Lt, Le, Gt, Ge} {
		if !IsComparison(b) {
			t.Errorf("IsComparison(%v) = false, want true", b)
		}
	}
	for _, b := range []Binary{Add, Eq, Ne, And} {
		if IsComparison(b) {
			t.Errorf("IsComparison(%v) = true, want false", b)
		}
	}
}
