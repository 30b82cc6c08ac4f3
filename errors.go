package edn

import (
	"fmt"
	"reflect"
)

// ErrorCode classifies a read failure. Codes satisfy the error interface
// so they can be used as errors.Is targets:
//
//	if errors.Is(err, edn.ErrDuplicateKey) { ... }
type ErrorCode int

const (
	ErrUnexpectedEOF ErrorCode = iota + 1
	ErrInvalidSyntax
	ErrUnmatchedDelimiter
	ErrUnterminatedCollection
	ErrInvalidNumber
	ErrInvalidString
	ErrInvalidEscape
	ErrDuplicateElement
	ErrDuplicateKey
	ErrUnknownTag
	ErrInvalidDiscard
	ErrOutOfMemory
	ErrDepthExceeded
	ErrReaderFailed
)

var codeNames = [...]string{
	ErrUnexpectedEOF:          "unexpected end of input",
	ErrInvalidSyntax:          "invalid syntax",
	ErrUnmatchedDelimiter:     "unmatched delimiter",
	ErrUnterminatedCollection: "unterminated collection",
	ErrInvalidNumber:          "invalid number",
	ErrInvalidString:          "invalid string",
	ErrInvalidEscape:          "invalid escape",
	ErrDuplicateElement:       "duplicate set element",
	ErrDuplicateKey:           "duplicate map key",
	ErrUnknownTag:             "unknown tag",
	ErrInvalidDiscard:         "invalid discard",
	ErrOutOfMemory:            "out of memory",
	ErrDepthExceeded:          "nesting too deep",
	ErrReaderFailed:           "tag reader failed",
}

func (c ErrorCode) String() string {
	if c > 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("error code %d", int(c))
}

func (c ErrorCode) Error() string { return "edn: " + c.String() }

// Error describes a failed read. Line and Column are 1-indexed and point at
// the byte where reading stopped.
type Error struct {
	Code    ErrorCode
	Message string
	Offset  int
	Line    int
	Column  int
	// Err is the error returned by a tag reader, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return "edn: " + e.Message
	}
	return fmt.Sprintf("edn: %s at line %d, column %d", e.Message, e.Line, e.Column)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the ErrorCode of e.
func (e *Error) Is(target error) bool {
	c, ok := target.(ErrorCode)
	return ok && c == e.Code
}

// A MarshalerError represents an error from calling a MarshalEDN method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "edn: error marshaling type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// An UnmarshalerError represents an error from calling an UnmarshalEDN or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "edn: error unmarshaling into type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
