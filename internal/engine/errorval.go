package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/funvibe/funxy/internal/aerr"
	"github.com/funvibe/funxy/internal/operator"
)

// errorIDCounter is one of the two process-wide monotonic counters the
// specification permits (§5, §9); no error id is ever reused.
var errorIDCounter uint64

func nextErrorID() uint64 {
	return atomic.AddUint64(&errorIDCounter, 1)
}

// ErrorValue is the Error variant of §3: contagious under every operator
// and call, carrying a unique id plus a message.
type ErrorValue struct {
	ID      uint64
	Message string
}

// NewError builds an ErrorValue, minting a fresh id.
func NewError(format string, args ...interface{}) *ErrorValue {
	return &ErrorValue{ID: nextErrorID(), Message: fmt.Sprintf(format, args...)}
}

// WrapError lifts a Go error (see package aerr) into an ErrorValue.
func WrapError(err error) *ErrorValue {
	return NewError("%s", err.Error())
}

func typeMismatch(op, t1, t2 string) *ErrorValue {
	return WrapError(&aerr.TypeMismatchError{Op: op, T1: t1, T2: t2})
}

func (e *ErrorValue) Kind() Kind { return KindError }

// Unary/Binary/Call never execute on an Error: Dispatch short-circuits
// before reaching them (§7). These exist only to satisfy the interface.
func (e *ErrorValue) Unary(operator.Unary) (Value, bool)               { return e, true }
func (e *ErrorValue) Binary(bool, operator.Binary, Value) (Value, bool) { return e, true }
func (e *ErrorValue) Arity(string) (int, bool)                         { return 0, false }
func (e *ErrorValue) Help(string) (string, bool)                       { return "", false }
func (e *ErrorValue) Call(string, []Value) Value                       { return e }
func (e *ErrorValue) Display() string                                  { return "Eval Error: " + e.Message }
func (e *ErrorValue) Equal(other Value) bool {
	o, ok := other.(*ErrorValue)
	return ok && o.ID == e.ID
}
