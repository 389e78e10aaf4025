package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes parse failures.
type ErrorKind string

const (
	// KindCommon is the driver-level catch-all.
	KindCommon ErrorKind = "COMMON"

	// KindEmptyPathPop means the resolver popped an empty resolution path.
	// Always a bug.
	KindEmptyPathPop ErrorKind = "EMPTY_PATH_POP"

	// KindDuplicateRecursionBinding means a recursion id was allocated twice
	// for the same alias.
	KindDuplicateRecursionBinding ErrorKind = "DUPLICATE_RECURSION_BINDING"

	// KindMissingRecursionBinding means a recursion binding was removed
	// before it was installed.
	KindMissingRecursionBinding ErrorKind = "MISSING_RECURSION_BINDING"

	// KindMissingType means a referenced alias does not exist and the
	// fallback type (if any) did not resolve either.
	KindMissingType ErrorKind = "MISSING_TYPE"

	// KindWrongComment means a block comment was not terminated.
	KindWrongComment ErrorKind = "WRONG_COMMENT"

	// KindParse is a syntactic mismatch.
	KindParse ErrorKind = "PARSE_ERROR"
)

// nearLimit bounds the location hint carried by positional errors.
const nearLimit = 40

// Error is the single error type returned by the compiler.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Name is the alias or label involved, if any.
	Name string

	// Offset is the rune offset of the failing cursor, or -1 when the
	// error is not tied to a position (resolver errors).
	Offset int

	// Near is the input tail starting at Offset, truncated.
	Near string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d near %q)", e.Kind, e.Message, e.Offset, e.Near)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a compiler error of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// KindOf returns the kind of a compiler error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func newMissingTypeError(name string) *Error {
	return &Error{
		Kind:    KindMissingType,
		Message: fmt.Sprintf("type %s not found", name),
		Name:    name,
		Offset:  -1,
	}
}

func newResolverError(kind ErrorKind, name, message string) *Error {
	return &Error{Kind: kind, Message: message, Name: name, Offset: -1}
}
