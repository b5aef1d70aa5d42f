package docmt

import (
	"fmt"
	"os"
	"strconv"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/engine"
	"github.com/funvibe/funxy/internal/operator"
)

// parser turns Afed source text into engine.Arena nodes plus
// SubstitutionRecords, following the grammar original_source's
// src/docmt/parser.rs implements (member/defn/equals/expr/call/access/
// single, plus array, map, lambda and pattern literals), adapted to the
// teacher's recursive-descent style (internal/parser). The whole token
// stream is scanned up front so a mis-guessed label lookahead in parseDefn
// can roll back to an index rather than needing to rewind a live scanner.
type parser struct {
	src        string
	toks       []token
	i          int
	doc        *Document
	diag       func(line, col int, msg string)
	errorCount int
}

func newParser(src string, doc *Document, diag func(line, col int, msg string)) *parser {
	lex := newLexer(src)
	var toks []token
	for {
		t := lex.next()
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	return &parser{src: src, toks: toks, doc: doc, diag: diag}
}

func (p *parser) cur() token  { return p.toks[p.i] }
func (p *parser) peek() token { return p.toks[min(p.i+1, len(p.toks)-1)] }
func (p *parser) advance()    { if p.i < len(p.toks)-1 { p.i++ } }
func (p *parser) mark() int   { return p.i }
func (p *parser) reset(m int) { p.i = m }

func (p *parser) errorf(line, col int, format string, args ...any) {
	p.errorCount++
	p.diag(line, col, fmt.Sprintf(format, args...))
}

// ParseRoot parses an entire document as a Map literal (its top-level
// members), registering substitution records into doc as it goes. It
// returns the handle of the root Map node.
func ParseRoot(arena *engine.Arena, src string, doc *Document, diag func(line, col int, msg string)) engine.Handle {
	p := newParser(src, doc, diag)
	members := p.parseMembers(arena, tokEOF, true)
	if p.cur().kind != tokEOF {
		p.errorf(p.cur().line, p.cur().column, "extra unparsed content in document")
	}
	return arena.NewMap(members, p.dupWarn)
}

func (p *parser) dupWarn(name string) {
	p.diag(0, 0, "redefinition of label '"+name+"' in map")
}

// parseMembers parses a comma-separated run of defn members up to term
// (tokRBrace, tokRBracket, or tokEOF for the document root), recovering
// from a malformed member by skipping to the next comma/terminator.
func (p *parser) parseMembers(arena *engine.Arena, term tokenKind, allowUse bool) []engine.MapMember {
	var out []engine.MapMember
	for p.cur().kind != term && p.cur().kind != tokEOF {
		if allowUse && p.cur().kind == tokKeyword && p.cur().text == "use" {
			out = append(out, p.parseUse(arena)...)
		} else {
			name, h, ok := p.parseDefn(arena)
			if ok {
				out = append(out, engine.MapMember{Name: name, Node: h})
			} else {
				p.recover(term)
			}
		}
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return out
}

// recover skips tokens until a comma, the terminator, or EOF, so one
// malformed member doesn't abort the whole document.
func (p *parser) recover(term tokenKind) {
	for p.cur().kind != tokComma && p.cur().kind != term && p.cur().kind != tokEOF {
		p.advance()
	}
}

func (p *parser) parseUse(arena *engine.Arena) []engine.MapMember {
	tok := p.cur()
	p.advance() // 'use'
	if p.cur().kind != tokString {
		p.errorf(tok.line, tok.column, "expected a string path after 'use'")
		return nil
	}
	path := p.cur().text
	p.advance()

	resolved, err := p.doc.resolveImportPath(path)
	if err != nil {
		p.errorf(tok.line, tok.column, "%s", err.Error())
		return nil
	}
	content, rerr := os.ReadFile(resolved)
	if rerr != nil {
		p.errorf(tok.line, tok.column, "%s", (&aerr.IOError{Path: resolved, Err: rerr}).Error())
		return nil
	}
	if err := p.doc.pushImport(resolved); err != nil {
		p.errorf(tok.line, tok.column, "%s", err.Error())
		return nil
	}
	defer p.doc.popImport()

	prevIgnore := p.doc.ignoreSubsts
	p.doc.ignoreSubsts = true
	sub := newParser(string(content), p.doc, p.diag)
	members := sub.parseMembers(arena, tokEOF, true)
	p.doc.ignoreSubsts = prevIgnore
	return members
}

// parseDefn parses `[ (string|name) pattern* ':' ] equals`, returning the
// member's name ("" when unlabeled) and its body handle.
func (p *parser) parseDefn(arena *engine.Arena) (string, engine.Handle, bool) {
	name := ""
	var pats []*engine.Pattern
	hasLabel := false

	switch {
	case p.cur().kind == tokColon:
		hasLabel = true
		p.advance()
	case p.cur().kind == tokString || p.cur().kind == tokName:
		save := p.mark()
		name = p.cur().text
		p.advance()
		pats = p.tryPatterns()
		if p.cur().kind == tokColon {
			hasLabel = true
			p.advance()
		} else {
			p.reset(save) // not actually a label; rewind and parse as a plain expression
			name = ""
			pats = nil
		}
	}

	body, ok := p.parseEquals(arena)
	if !ok {
		return "", engine.InvalidHandle, false
	}

	if hasLabel && len(pats) > 0 {
		if err := engine.ValidateUnique(pats); err != nil {
			p.errorf(p.cur().line, p.cur().column, "%s", err.Error())
			return "", engine.InvalidHandle, false
		}
		fname := name
		body = arena.NewFunction(&fname, pats, body)
	}
	return name, body, true
}

// tryPatterns parses zero or more patterns, stopping at the first token
// that can't start one; the caller decides whether the result is a real
// pattern list (colon follows) or a failed label guess to roll back from.
func (p *parser) tryPatterns() []*engine.Pattern {
	var pats []*engine.Pattern
	for {
		pat, ok := p.parsePattern()
		if !ok {
			break
		}
		pats = append(pats, pat)
	}
	return pats
}

func (p *parser) parsePattern() (*engine.Pattern, bool) {
	switch {
	case p.cur().kind == tokName && p.cur().text == "_":
		p.advance()
		return &engine.Pattern{Kind: engine.PatternIgnore}, true
	case p.cur().kind == tokName:
		name := p.cur().text
		p.advance()
		return &engine.Pattern{Kind: engine.PatternArg, Name: name}, true
	case p.cur().kind == tokLBracket:
		p.advance()
		var elems []*engine.Pattern
		for p.cur().kind != tokRBracket && p.cur().kind != tokEOF {
			sub, ok := p.parsePattern()
			if !ok {
				break
			}
			elems = append(elems, sub)
			if p.cur().kind == tokComma {
				p.advance()
			} else {
				break
			}
		}
		if p.cur().kind != tokRBracket {
			p.errorf(p.cur().line, p.cur().column, "missing closing bracket in array pattern")
			return nil, false
		}
		p.advance()
		return &engine.Pattern{Kind: engine.PatternArray, Elems: elems}, true
	case p.cur().kind == tokLBrace:
		p.advance()
		fuzzy := false
		var fields []engine.PatternField
		for p.cur().kind != tokRBrace && p.cur().kind != tokEOF {
			if p.cur().kind == tokDot && p.peek().kind == tokDot {
				p.advance()
				p.advance()
				fuzzy = true
			} else if p.cur().kind == tokName || p.cur().kind == tokString {
				key := p.cur().text
				p.advance()
				if p.cur().kind != tokColon {
					p.errorf(p.cur().line, p.cur().column, "missing colon in map pattern field")
					return nil, false
				}
				p.advance()
				sub, ok := p.parsePattern()
				if !ok {
					return nil, false
				}
				fields = append(fields, engine.PatternField{Key: key, Pattern: sub})
			} else {
				break
			}
			if p.cur().kind == tokComma {
				p.advance()
			} else {
				break
			}
		}
		if p.cur().kind != tokRBrace {
			p.errorf(p.cur().line, p.cur().column, "missing closing brace in map pattern")
			return nil, false
		}
		p.advance()
		return &engine.Pattern{Kind: engine.PatternMap, Fuzzy: fuzzy, Fields: fields}, true
	}
	return nil, false
}

// parseEquals parses an expression, then an optional `= \`raw\`` suffix
// that registers a SubstitutionRecord over the raw text's byte range. The
// raw body between the graves is read directly off the source string, and
// the tokens the lexer produced for it are skipped, since its contents are
// opaque to the grammar.
func (p *parser) parseEquals(arena *engine.Arena) (engine.Handle, bool) {
	body, ok := p.parseExpr(arena, 0)
	if !ok {
		return engine.InvalidHandle, false
	}
	if p.cur().kind == tokEquals {
		tok := p.cur()
		p.advance()
		if p.cur().kind != tokBacktick {
			p.errorf(tok.line, tok.column, "missing opening grave for equals")
			return body, true
		}
		open := p.cur()
		p.advance()
		start := open.pos + 1
		idx := start
		for idx < len(p.src) && p.src[idx] != '`' {
			if p.src[idx] == '\\' && idx+1 < len(p.src) {
				idx++
			}
			idx++
		}
		end := idx
		if idx >= len(p.src) {
			p.errorf(tok.line, tok.column, "missing closing grave for equals")
		}
		if !p.doc.ignoreSubsts {
			p.doc.pushSubstitution(SubstitutionRecord{Start: start, End: end, Line: open.line, Column: open.column, Target: body})
		}
		p.seekPastByte(end + 1)
	}
	return body, true
}

// seekPastByte advances the token cursor until it reaches a token starting
// at or after pos, used after consuming a raw (untokenized) backtick body.
func (p *parser) seekPastByte(pos int) {
	for p.toks[p.i].kind != tokEOF && p.toks[p.i].pos < pos {
		p.i++
	}
}

func (p *parser) parseExpr(arena *engine.Arena, minPrec int) (engine.Handle, bool) {
	var value engine.Handle
	tookUnary := false
	if p.cur().kind == tokOperator {
		if op, ok := operator.LookupUnary(p.cur().text); ok {
			p.advance()
			next := operator.UnaryPrecedence()
			if minPrec > next {
				next = minPrec
			}
			arg, ok := p.parseExpr(arena, next+1)
			if !ok {
				return engine.InvalidHandle, false
			}
			value = arena.NewUnary(op, arg)
			tookUnary = true
		}
	}
	if !tookUnary {
		v, ok := p.parseCall(arena)
		if !ok {
			return engine.InvalidHandle, false
		}
		value = v
	}

	// A `=` followed by a grave opens a substitution (parseEquals); any
	// other `=` is the equality operator.
	for p.cur().kind == tokOperator || (p.cur().kind == tokEquals && p.peek().kind != tokBacktick) {
		op, ok := operator.LookupBinary(p.cur().text)
		if !ok {
			break
		}
		prec := op.Precedence()
		if prec < minPrec {
			break
		}
		next := prec
		if op.Associativity() == operator.LeftAssoc {
			next = prec + 1
		}
		p.advance()
		rhs, ok := p.parseExpr(arena, next)
		if !ok {
			return engine.InvalidHandle, false
		}
		value = arena.NewBinary(op, value, rhs)
	}
	return value, true
}

func (p *parser) parseCall(arena *engine.Arena) (engine.Handle, bool) {
	recv, path, ok := p.parseAccess(arena)
	if !ok {
		return engine.InvalidHandle, false
	}
	var args []engine.Handle
	for p.canStartSingle() {
		argRecv, argPath, ok := p.parseAccess(arena)
		if !ok {
			break
		}
		args = append(args, arena.NewAccess(argRecv, argPath, nil))
	}
	if len(path) == 0 && len(args) == 0 {
		return recv, true
	}
	return arena.NewAccess(recv, path, args), true
}

func (p *parser) parseAccess(arena *engine.Arena) (engine.Handle, []string, bool) {
	h, ok := p.parseSingle(arena)
	if !ok {
		return engine.InvalidHandle, nil, false
	}
	var path []string
	for p.cur().kind == tokDot {
		p.advance()
		if p.cur().kind != tokName {
			p.errorf(p.cur().line, p.cur().column, "expected a name after '.'")
			return engine.InvalidHandle, nil, false
		}
		path = append(path, p.cur().text)
		p.advance()
	}
	return h, path, true
}

// canStartSingle reports whether cur can begin a `single` production, used
// to decide whether juxtaposition continues feeding call arguments.
func (p *parser) canStartSingle() bool {
	switch p.cur().kind {
	case tokString, tokLParen, tokLBracket, tokLBrace, tokBackslash, tokNumber, tokName:
		return true
	case tokKeyword:
		return p.cur().text != "use"
	}
	return false
}

func (p *parser) parseSingle(arena *engine.Arena) (engine.Handle, bool) {
	switch p.cur().kind {
	case tokString:
		s := p.cur().text
		p.advance()
		return arena.NewConstant(engine.String{Value: s}), true

	case tokLParen:
		p.advance()
		_, body, ok := p.parseDefn(arena)
		if !ok {
			return engine.InvalidHandle, false
		}
		if p.cur().kind != tokRParen {
			p.errorf(p.cur().line, p.cur().column, "missing closing paren")
			return engine.InvalidHandle, false
		}
		p.advance()
		return body, true

	case tokLBracket:
		return p.parseArray(arena)

	case tokLBrace:
		return p.parseMap(arena)

	case tokBackslash:
		return p.parseLambda(arena)

	case tokNumber:
		return p.parseNumber(arena)

	case tokKeyword:
		switch p.cur().text {
		case "null":
			p.advance()
			return arena.NewConstant(engine.Null{}), true
		case "true":
			p.advance()
			return arena.NewConstant(engine.Bool{Value: true}), true
		case "false":
			p.advance()
			return arena.NewConstant(engine.Bool{Value: false}), true
		case "if":
			return p.parseIf(arena)
		case "use":
			p.errorf(p.cur().line, p.cur().column, "'use' keyword can only be used for importing")
			return engine.InvalidHandle, false
		}

	case tokName:
		name := p.cur().text
		p.advance()
		return arena.NewVar(name), true
	}
	p.errorf(p.cur().line, p.cur().column, "unexpected token")
	return engine.InvalidHandle, false
}

// parseIf parses the lazy 3-ary `if cond then else` construct
// (SPEC_FULL.md §12), each operand at access-expression granularity, the
// same granularity ordinary call arguments parse at.
func (p *parser) parseIf(arena *engine.Arena) (engine.Handle, bool) {
	p.advance() // 'if'
	cond, condPath, ok := p.parseAccess(arena)
	if !ok {
		return engine.InvalidHandle, false
	}
	then, thenPath, ok := p.parseAccess(arena)
	if !ok {
		return engine.InvalidHandle, false
	}
	els, elsPath, ok := p.parseAccess(arena)
	if !ok {
		return engine.InvalidHandle, false
	}
	condH := wrapAccess(arena, cond, condPath)
	thenH := wrapAccess(arena, then, thenPath)
	elsH := wrapAccess(arena, els, elsPath)
	return arena.NewIf(condH, thenH, elsH), true
}

func wrapAccess(arena *engine.Arena, h engine.Handle, path []string) engine.Handle {
	if len(path) == 0 {
		return h
	}
	return arena.NewAccess(h, path, nil)
}

func (p *parser) parseArray(arena *engine.Arena) (engine.Handle, bool) {
	p.advance() // '['
	var elems []engine.Handle
	for p.cur().kind != tokRBracket && p.cur().kind != tokEOF {
		_, h, ok := p.parseDefn(arena)
		if ok {
			elems = append(elems, h)
		} else {
			p.recover(tokRBracket)
		}
		if p.cur().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur().kind != tokRBracket {
		p.errorf(p.cur().line, p.cur().column, "missing closing bracket in array")
		return engine.InvalidHandle, false
	}
	p.advance()
	return arena.NewArray(elems), true
}

func (p *parser) parseMap(arena *engine.Arena) (engine.Handle, bool) {
	p.advance() // '{'
	members := p.parseMembers(arena, tokRBrace, true)
	if p.cur().kind != tokRBrace {
		p.errorf(p.cur().line, p.cur().column, "missing closing brace in map")
		return engine.InvalidHandle, false
	}
	p.advance()
	return arena.NewMap(members, p.dupWarn), true
}

func (p *parser) parseLambda(arena *engine.Arena) (engine.Handle, bool) {
	p.advance() // '\'
	var pats []*engine.Pattern
	for {
		pat, ok := p.parsePattern()
		if !ok {
			break
		}
		pats = append(pats, pat)
	}
	if len(pats) == 0 {
		p.errorf(p.cur().line, p.cur().column, "expected at least one pattern in lambda")
		return engine.InvalidHandle, false
	}
	if p.cur().kind != tokColon {
		p.errorf(p.cur().line, p.cur().column, "missing colon in lambda definition")
		return engine.InvalidHandle, false
	}
	p.advance()
	body, ok := p.parseExpr(arena, 0)
	if !ok {
		return engine.InvalidHandle, false
	}
	if err := engine.ValidateUnique(pats); err != nil {
		p.errorf(p.cur().line, p.cur().column, "%s", err.Error())
		return engine.InvalidHandle, false
	}
	return arena.NewFunction(nil, pats, body), true
}

// parseNumber follows original_source's rule exactly: an integer literal
// (no decimal point) becomes an exact Ratio; anything else falls back to
// float parsing and becomes a Real, even a literal like "3.0" (§4.2, §7).
func (p *parser) parseNumber(arena *engine.Arena) (engine.Handle, bool) {
	text := p.cur().text
	line, col := p.cur().line, p.cur().column
	p.advance()
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return arena.NewConstant(engine.NewRatioInt(n)), true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return arena.NewConstant(engine.NewReal(f)), true
	}
	p.errorf(line, col, "invalid number %q", text)
	return engine.InvalidHandle, false
}
