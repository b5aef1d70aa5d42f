package docmt

import (
	"strings"
	"testing"

	"github.com/funvibe/funxy/internal/diag"
)

func TestDocumentRendersSubstitutions(t *testing.T) {
	src := "x: 1 + 2 = `old`, y: x * 10 = `stale`"
	doc := NewDocument(src, "", nil)
	if errCount := doc.Evaluate(); errCount != 0 {
		t.Fatalf("Evaluate() = %d errors, want 0", errCount)
	}
	rendered := doc.Render()
	if !strings.Contains(rendered, "3") {
		t.Errorf("rendered = %q, expected it to contain 3", rendered)
	}
	if !strings.Contains(rendered, "30") {
		t.Errorf("rendered = %q, expected it to contain 30", rendered)
	}
	if strings.Contains(rendered, "old") || strings.Contains(rendered, "stale") {
		t.Errorf("rendered = %q, stale substitution text should be replaced", rendered)
	}
}

func TestDocumentOnlyClearBlanksSubstitutions(t *testing.T) {
	src := "x: 1 + 2 = `old value`"
	doc := NewDocument(src, "", nil)
	doc.OnlyClear = true
	if errCount := doc.Evaluate(); errCount != 0 {
		t.Fatalf("Evaluate() = %d errors, want 0", errCount)
	}
	rendered := doc.Render()
	if strings.Contains(rendered, "old value") {
		t.Errorf("rendered = %q, expected substitution body to be blanked", rendered)
	}
}

func TestDocumentEvaluateReportsErrorsNonAborting(t *testing.T) {
	src := "x: 1 + 2 = `a`, y: nope = `b`, z: 4 * 4 = `c`"
	var reported []diag.Diagnostic
	sink := &recordingSink{report: func(d diag.Diagnostic) { reported = append(reported, d) }}
	doc := NewDocument(src, "", sink)

	errCount := doc.Evaluate()
	if errCount != 1 {
		t.Fatalf("Evaluate() = %d errors, want 1", errCount)
	}
	rendered := doc.Render()
	if !strings.Contains(rendered, "16") {
		t.Errorf("rendered = %q, expected the substitution after the error to still evaluate", rendered)
	}
	foundError := false
	for _, d := range reported {
		if d.Severity == diag.SeverityError {
			foundError = true
		}
	}
	if !foundError {
		t.Error("expected at least one error diagnostic to be reported")
	}
}

func TestDocumentWarnsOnDuplicateKey(t *testing.T) {
	src := "x: 1, x: 2"
	var reported []diag.Diagnostic
	sink := &recordingSink{report: func(d diag.Diagnostic) { reported = append(reported, d) }}
	NewDocument(src, "", sink)

	foundWarning := false
	for _, d := range reported {
		if d.Severity == diag.SeverityWarning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Error("expected a warning diagnostic for the duplicate key")
	}
}

type recordingSink struct {
	report     func(diag.Diagnostic)
	errorCount int
}

func (s *recordingSink) Report(d diag.Diagnostic) {
	if d.Severity == diag.SeverityError {
		s.errorCount++
	}
	s.report(d)
}

func (s *recordingSink) ErrorCount() int { return s.errorCount }
