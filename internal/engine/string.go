package engine

import (
	"strings"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/operator"
)

// String is the String variant of §3. Per §5's sharing policy, copies of a
// String may share the same underlying Go string without copy-on-write
// concerns since Go strings are themselves immutable.
type String struct{ Value string }

func (String) Kind() Kind { return KindString }

func (String) Unary(operator.Unary) (Value, bool) { return nil, false }

func (s String) Binary(reversed bool, op operator.Binary, other Value) (Value, bool) {
	o, ok := other.(String)
	if !ok {
		return nil, false
	}
	left, right := s.Value, o.Value
	if reversed {
		left, right = right, left
	}
	switch op {
	case operator.Add:
		return String{left + right}, true
	case operator.Le:
		return Bool{left <= right}, true
	}
	return nil, false
}

func (s String) Arity(attr string) (int, bool) {
	if n, ok := stringMethodArity[attr]; ok {
		return n, true
	}
	return 0, false
}

func (s String) Help(string) (string, bool) { return "", false }

var stringMethodArity = map[string]int{
	"len":    0,
	"upper":  0,
	"lower":  0,
	"concat": 1,
	"slice":  2,
	"at":     1,
}

func (s String) Call(attr string, args []Value) Value {
	switch attr {
	case "len":
		return NewRatioInt(int64(len([]rune(s.Value))))
	case "upper":
		return String{strings.ToUpper(s.Value)}
	case "lower":
		return String{strings.ToLower(s.Value)}
	case "concat":
		o, ok := args[0].(String)
		if !ok {
			return typeMismatch("concat", "String", string(args[0].Kind()))
		}
		return String{s.Value + o.Value}
	case "at":
		i, ok := indexArg(args[0])
		if !ok {
			return typeMismatch("at", "String", string(args[0].Kind()))
		}
		runes := []rune(s.Value)
		if i < 0 || i >= len(runes) {
			return WrapError(&aerr.IndexOutOfBoundsError{Index: i, Len: len(runes)})
		}
		return String{string(runes[i])}
	case "slice":
		lo, _ := indexArg(args[0])
		hi, _ := indexArg(args[1])
		runes := []rune(s.Value)
		if lo < 0 || hi > len(runes) || lo > hi {
			return WrapError(&aerr.IndexOutOfBoundsError{Index: hi, Len: len(runes)})
		}
		return String{string(runes[lo:hi])}
	}
	return typeMismatch("$", "String", "")
}

func indexArg(v Value) (int, bool) {
	n, ok := v.(Number)
	if !ok || n.IsReal() {
		return 0, false
	}
	num, den := n.Ratio()
	if den != 1 {
		return 0, false
	}
	return int(num), true
}

// displayEscapes mirrors the fixed escape set of §6's string-literal
// grammar, used when re-escaping for Display.
var displayEscapes = map[rune]string{
	'\a': `\a`, '\b': `\b`, 0x1b: `\e`, '\f': `\f`,
	'\n': `\n`, '\r': `\r`, '\t': `\t`, '\v': `\v`,
	'\\': `\\`, '"': `\"`,
}

func (s String) Display() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s.Value {
		if esc, ok := displayEscapes[r]; ok {
			b.WriteString(esc)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && o.Value == s.Value
}

// EscapeBackticks escapes a raw string the way the rendering pass escapes
// literal backticks inside a substituted Value (§4.5): every backtick is
// prefixed with a backslash, giving `\``.
func EscapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "\\`")
}
