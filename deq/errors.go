package deq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies why a run halted. It implements error so that
// errors.Is(err, deq.Underflow) matches any *Error of that kind.
type ErrorKind int

// Error kinds; every one is terminal for the run that raised it.
const (
	LexError ErrorKind = iota + 1
	UnknownWord
	Underflow
	TypeError
	CapacityExceeded
	RecursionLimit
	Aborted
	DivisionByZero
	Exit
	RangeError
)

var kindErrors = []string{
	"unknown error",
	"lex error",
	"unknown word",
	"underflow",
	"type error",
	"capacity exceeded",
	"recursion limit",
	"aborted",
	"division by zero",
	"exit",
	"range error",
}

func (k ErrorKind) Error() string {
	if k >= 0 && int(k) < len(kindErrors) {
		return kindErrors[k]
	}
	return "error kind " + strconv.Itoa(int(k))
}

// Error describes the cause and the context of a halted run.
type Error struct {
	Kind ErrorKind // nature of the halt
	Pos  Pos       // position of the offending token
	Word string    // word being dispatched, if any

	Reason     string // LexError and RangeError detail
	Incomplete bool   // LexError caused by input ending early

	Want, Have int // Underflow operand counts

	Expected []Kind // TypeError
	Got      Kind

	Depth, Limit int // RecursionLimit, CapacityExceeded

	Code int64 // Exit

	Err error // underlying cause, e.g. a context error when Aborted
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("deq: ")
	sb.WriteString(e.Kind.Error())
	switch e.Kind {
	case LexError:
		if e.Reason != "" {
			sb.WriteString(": ")
			sb.WriteString(e.Reason)
		}
	case UnknownWord:
		fmt.Fprintf(&sb, " %q", e.Word)
	case Underflow:
		if e.Word != "" {
			fmt.Fprintf(&sb, ": %v needs %v operand", e.Word, e.Want)
			if e.Want != 1 {
				sb.WriteByte('s')
			}
			fmt.Fprintf(&sb, ", have %v", e.Have)
		}
	case TypeError:
		if e.Word != "" {
			fmt.Fprintf(&sb, ": %v expects ", e.Word)
		} else {
			sb.WriteString(": expected ")
		}
		for i, k := range e.Expected {
			if i > 0 {
				sb.WriteString(" or ")
			}
			sb.WriteString(k.String())
		}
		fmt.Fprintf(&sb, ", got %v", e.Got)
	case CapacityExceeded:
		fmt.Fprintf(&sb, ": limit %v", e.Limit)
		if e.Word != "" {
			fmt.Fprintf(&sb, " by %v", e.Word)
		}
	case RecursionLimit:
		fmt.Fprintf(&sb, ": depth %v", e.Depth)
		if e.Word != "" {
			fmt.Fprintf(&sb, " entering %v", e.Word)
		}
	case Exit:
		fmt.Fprintf(&sb, " %v", e.Code)
	case RangeError:
		if e.Word != "" {
			fmt.Fprintf(&sb, " in %v", e.Word)
		}
		if e.Reason != "" {
			sb.WriteString(": ")
			sb.WriteString(e.Reason)
		}
	default:
		if e.Word != "" {
			fmt.Fprintf(&sb, " in %v", e.Word)
		}
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Pos != (Pos{}) {
		sb.WriteString(" at ")
		sb.WriteString(e.Pos.String())
	}
	return sb.String()
}

// Is matches an ErrorKind target against the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// IsIncomplete reports whether err is a LexError caused by an unterminated
// string or quotation, in which case more input may complete the program.
func IsIncomplete(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == LexError && de.Incomplete
}

// ErrStepLimit is wrapped by the Aborted error raised once a run exhausts
// its step budget.
var ErrStepLimit = errors.New("step limit exceeded")

func lexError(pos Pos, incomplete bool, reason string) *Error {
	return &Error{Kind: LexError, Pos: pos, Reason: reason, Incomplete: incomplete}
}
