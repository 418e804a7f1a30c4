package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to react to it.
type Kind uint8

const (
	KindOther Kind = iota
	// KindNotFound is a lookup that matched nothing.
	KindNotFound
	// KindCorrupt is stored data that could not be decoded.
	KindCorrupt
	// KindInvalid is bad user input: unknown index, malformed argument.
	KindInvalid
	// KindIO is a local file read or write failure.
	KindIO
	// KindExternal is a failure in something we call out to (archive, scraper, Discord).
	KindExternal
	// KindPermission is a caller lacking the rights for an action.
	KindPermission
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindCorrupt:
		return "corrupt data"
	case KindInvalid:
		return "invalid input"
	case KindIO:
		return "i/o error"
	case KindExternal:
		return "external failure"
	case KindPermission:
		return "permission denied"
	default:
		return "error"
	}
}

// Error is a failure tagged with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E builds a tagged error. err may be nil when the kind and op say it all.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the outermost tagged error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
