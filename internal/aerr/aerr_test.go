package aerr

import (
	"errors"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unresolved name", &UnresolvedNameError{Name: "foo"}, "unresolved name foo"},
		{"unary type mismatch", &TypeMismatchError{Op: "-", T1: "String"}, "operator not implemented for - String"},
		{"binary type mismatch", &TypeMismatchError{Op: "+", T1: "Number", T2: "String"}, "operator not implemented between Number and String"},
		{"arity mismatch", &ArityMismatchError{Expected: 2, Got: 1, Context: "call"}, "Expected 2 elements, but call has 1 elements"},
		{"missing key", &MissingKeyError{Key: "x"}, "map is missing key x"},
		{"unused keys", &UnusedKeysError{Keys: []string{"y"}}, "map contains unused keys [y]"},
		{"circular dependency", &CircularDependencyError{}, "Circular dependency"},
		{"index out of bounds", &IndexOutOfBoundsError{Index: 5, Len: 3}, "index 5 out of bounds (length 3)"},
		{"domain error", &DomainError{Msg: "square root of negative number"}, "square root of negative number"},
		{"parse error with file", &ParseError{File: "a.afed", Line: 2, Column: 3, Msg: "unexpected token"}, "a.afed:2:3: unexpected token"},
		{"parse error without file", &ParseError{Line: 1, Column: 1, Msg: "unexpected token"}, "1:1: unexpected token"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.err.Error(); got != c.want {
				t.Errorf("Error() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := &IOError{Path: "/tmp/x", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("IOError should unwrap to its inner error")
	}
	if err.Error() != "/tmp/x: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
}
