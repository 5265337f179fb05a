package core

import "fmt"

// ErrorKind classifies failures reported by the statement interpreter.
type ErrorKind int

const (
	// NotFound: a referenced database, table or row does not exist.
	NotFound ErrorKind = iota + 1
	// AlreadyExists: a create targets an existing name.
	AlreadyExists
	// NoContextSelected: a table-level statement ran without a current database.
	NoContextSelected
	// Unsupported: the input matches no recognised statement shape.
	Unsupported
)

func (kind ErrorKind) String() string {
	switch kind {
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case NoContextSelected:
		return "NoContextSelected"
	case Unsupported:
		return "Unsupported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

// Error is a classified interpreter failure. Message is the exact text shown
// to the user.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

// Is reports whether target is the sentinel for the same kind.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == err.Kind
}

var (
	ErrNotFound           = &Error{Kind: NotFound}
	ErrAlreadyExists      = &Error{Kind: AlreadyExists}
	ErrNoDatabaseSelected = &Error{Kind: NoContextSelected}
	ErrUnsupported        = &Error{Kind: Unsupported}
)

// Errorf builds an Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
