// Package docmt implements the document substitution engine of §4.5: a
// Document owns the source text, its parsed expression Arena, and an
// ordered list of SubstitutionRecords mapping byte ranges in the source to
// computed Values. It mirrors original_source's src/docmt/mod.rs (the
// Docmt type) translated into the teacher's package-per-concern layout.
package docmt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/diag"
	"github.com/funvibe/funxy/internal/engine"
)

// SubstitutionRecord is one `= \`...\`` rendering target (§3): the raw
// text's [Start,End) byte range in the source, the expression node it
// renders, and the Value computed for it once the document is evaluated.
type SubstitutionRecord struct {
	Start, End   int
	Line, Column int
	Target       engine.Handle
	Value        engine.Value // nil until Evaluate runs
}

// Document is a parsed Afed source file together with its substitution
// records. OnlyClear suppresses rendering a Value at all, just blanking
// the substitution body (the `-d/--clear` CLI flag, §6). ignoreSubsts
// disables registering new substitution records entirely, used while
// parsing an imported file's members into the importing document.
type Document struct {
	src  string
	Root engine.Handle

	Arena       *engine.Arena
	OnlyClear   bool
	ignoreSubsts bool
	importStack []string

	substs []SubstitutionRecord

	Sink diag.Sink
}

// NewDocument parses src into a fresh Document. path, when non-empty,
// seeds the import stack so nested `use` statements can detect cycles and
// resolve relative paths against the document's own directory.
func NewDocument(src, path string, sink diag.Sink) *Document {
	if sink == nil {
		sink = &diag.DiscardSink{}
	}
	doc := &Document{src: src, Arena: engine.NewArena(), Sink: sink}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			doc.importStack = []string{abs}
		}
	}

	diagFn := func(line, col int, msg string) {
		doc.Sink.Report(diag.Diagnostic{Severity: diag.SeverityWarning, File: doc.currentFile(), Line: line, Column: col, Message: msg})
	}
	doc.Root = ParseRoot(doc.Arena, src, doc, diagFn)
	return doc
}

func (d *Document) currentFile() string {
	if len(d.importStack) == 0 {
		return ""
	}
	return filepath.Base(d.importStack[len(d.importStack)-1])
}

// resolveImportPath resolves a `use` statement's string literal against
// the directory of the file currently being parsed (original_source's
// Pos::check_path), falling back to resolving against the working
// directory for a document with no path of its own.
func (d *Document) resolveImportPath(path string) (string, error) {
	if len(d.importStack) > 0 && !filepath.IsAbs(path) {
		dir := filepath.Dir(d.importStack[len(d.importStack)-1])
		joined := filepath.Join(dir, path)
		if abs, err := filepath.Abs(joined); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs, nil
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &aerr.IOError{Path: path, Err: err}
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cannot find path %q", path)
	}
	return abs, nil
}

func (d *Document) pushImport(path string) error {
	for _, p := range d.importStack {
		if p == path {
			return &aerr.IOError{Path: path, Err: fmt.Errorf("circular dependence in file imports")}
		}
	}
	d.importStack = append(d.importStack, path)
	return nil
}

func (d *Document) popImport() {
	d.importStack = d.importStack[:len(d.importStack)-1]
}

// pushSubstitution inserts a new SubstitutionRecord in source-position
// order, rejecting it if it overlaps a record already present or is
// malformed (§4.5's disjointness check, original_source's Docmt::push).
func (d *Document) pushSubstitution(rec SubstitutionRecord) bool {
	if d.ignoreSubsts {
		return false
	}
	if rec.Start > rec.End || rec.End > len(d.src) {
		return false
	}
	i := 0
	for i < len(d.substs) && d.substs[i].Start < rec.Start {
		i++
	}
	if i > 0 && d.substs[i-1].End > rec.Start {
		return false
	}
	if i < len(d.substs) && rec.End > d.substs[i].Start {
		return false
	}
	d.Arena.MarkSaved(rec.Target)
	d.substs = append(d.substs, SubstitutionRecord{})
	copy(d.substs[i+1:], d.substs[i:])
	d.substs[i] = rec
	return true
}

// Evaluate forces every substitution target exactly once, recording its
// computed Value; it never aborts on an Error Value, only logs it through
// Sink, and returns the count of substitutions that evaluated to an Error
// (§4.5 "non-aborting" evaluation pass). With OnlyClear set it forces
// nothing and returns 0.
func (d *Document) Evaluate() int {
	if d.OnlyClear {
		return 0
	}
	errCount := 0
	for i := range d.substs {
		rec := &d.substs[i]
		if rec.Value != nil {
			continue
		}
		v := d.Arena.Force(rec.Target)
		rec.Value = v
		if engine.IsError(v) {
			errCount++
			d.Sink.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				File:     d.currentFile(),
				Line:     rec.Line,
				Column:   rec.Column,
				Message:  v.Display(),
			})
		}
	}
	return errCount
}

// Render produces the rendered document: raw source between substitution
// boundaries, and for each substitution either nothing (OnlyClear) or the
// computed Value's Display with literal backticks escaped (§4.5).
func (d *Document) Render() string {
	var b strings.Builder
	last := 0
	for _, rec := range d.substs {
		if last < len(d.src) {
			b.WriteString(d.src[last:rec.Start])
		}
		if !d.OnlyClear && rec.Value != nil {
			b.WriteString(engine.EscapeBackticks(rec.Value.Display()))
		}
		last = rec.End
	}
	if last < len(d.src) {
		b.WriteString(d.src[last:])
	}
	return b.String()
}

// Substitutions exposes the document's ordered substitution records, e.g.
// for the CLI's post-render summary of how many substitutions failed.
func (d *Document) Substitutions() []SubstitutionRecord { return d.substs }
