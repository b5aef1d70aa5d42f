package docmt

// tokenKind discriminates the lexer's output, mirroring the teacher's
// internal/lexer token set but trimmed to Afed's grammar (§7).
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokError
	tokName
	tokString
	tokNumber
	tokOperator // matched against operator.Symbols(), longest-match-first
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokColon
	tokComma
	tokDot
	tokEquals
	tokBacktick
	tokBackslash // lambda introducer
	tokKeyword   // null, true, false, if, use
)

type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
	pos    int // byte offset of the token's first byte in the source
}
