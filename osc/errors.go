package osc

import (
	"errors"
	"fmt"
)

// ErrorKind identifies what went wrong while en- or decoding a packet.
type ErrorKind int

const (
	KindNotABuffer ErrorKind = iota + 1
	KindNotAString
	KindMissingTerminator
	KindBadPadding
	KindEmbeddedNull
	KindBufferTooSmall
	KindUnsupportedWidth
	KindNullTimetag
	KindInvalidTimetag
	KindUnknownTypeCode
	KindInvalidAddress
	KindMissingTypeTag
	KindUnbalancedBracket
	KindTypeMismatch
	KindMissingAddress
	KindNotABundle
	KindTruncatedBundle
	KindTooDeep
)

var kindNames = map[ErrorKind]string{
	KindNotABuffer:        "not a buffer",
	KindNotAString:        "not a string",
	KindMissingTerminator: "missing terminator",
	KindBadPadding:        "bad padding",
	KindEmbeddedNull:      "embedded null",
	KindBufferTooSmall:    "buffer too small",
	KindUnsupportedWidth:  "unsupported width",
	KindNullTimetag:       "null timetag",
	KindInvalidTimetag:    "invalid timetag",
	KindUnknownTypeCode:   "unknown type code",
	KindInvalidAddress:    "invalid address",
	KindMissingTypeTag:    "missing type tag",
	KindUnbalancedBracket: "unbalanced bracket",
	KindTypeMismatch:      "type mismatch",
	KindMissingAddress:    "missing address",
	KindNotABundle:        "not a bundle",
	KindTruncatedBundle:   "truncated bundle",
	KindTooDeep:           "nesting too deep",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel errors, one per kind. Compare with errors.Is.
var (
	ErrNotABuffer        = &Error{Kind: KindNotABuffer}
	ErrNotAString        = &Error{Kind: KindNotAString}
	ErrMissingTerminator = &Error{Kind: KindMissingTerminator}
	ErrBadPadding        = &Error{Kind: KindBadPadding}
	ErrEmbeddedNull      = &Error{Kind: KindEmbeddedNull}
	ErrBufferTooSmall    = &Error{Kind: KindBufferTooSmall}
	ErrUnsupportedWidth  = &Error{Kind: KindUnsupportedWidth}
	ErrNullTimetag       = &Error{Kind: KindNullTimetag}
	ErrInvalidTimetag    = &Error{Kind: KindInvalidTimetag}
	ErrUnknownTypeCode   = &Error{Kind: KindUnknownTypeCode}
	ErrInvalidAddress    = &Error{Kind: KindInvalidAddress}
	ErrMissingTypeTag    = &Error{Kind: KindMissingTypeTag}
	ErrUnbalancedBracket = &Error{Kind: KindUnbalancedBracket}
	ErrTypeMismatch      = &Error{Kind: KindTypeMismatch}
	ErrMissingAddress    = &Error{Kind: KindMissingAddress}
	ErrNotABundle        = &Error{Kind: KindNotABundle}
	ErrTruncatedBundle   = &Error{Kind: KindTruncatedBundle}
	ErrTooDeep           = &Error{Kind: KindTooDeep}
)

// Error is returned by every codec operation. Two errors are equal under
// errors.Is when their kinds match.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "osc: " + e.Kind.String()
	}
	return "osc: " + e.Kind.String() + ": " + e.Msg
}

// Is implements the errors.Is contract by comparing kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsStrict reports whether err is one that lenient decoding would have
// tolerated.
func IsStrict(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindMissingTerminator, KindBadPadding, KindEmbeddedNull,
		KindInvalidAddress, KindMissingTypeTag, KindUnbalancedBracket:
		return true
	}
	return false
}
