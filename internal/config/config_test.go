package config

import "testing"

func TestTrimSourceExt(t *testing.T) {
	cases := map[string]string{
		"report.afed": "report",
		"report":      "report",
		".afed":       "",
	}
	for in, want := range cases {
		if got := TrimSourceExt(in); got != want {
			t.Errorf("TrimSourceExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasSourceExt(t *testing.T) {
	cases := map[string]bool{
		"report.afed": true,
		"report.txt":  false,
		"report":      false,
	}
	for in, want := range cases {
		if got := HasSourceExt(in); got != want {
			t.Errorf("HasSourceExt(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNumericToleranceOverridable(t *testing.T) {
	orig := NumericTolerance
	defer func() { NumericTolerance = orig }()

	NumericTolerance = 1e-6
	if NumericTolerance != 1e-6 {
		t.Errorf("NumericTolerance did not accept override")
	}
}
