package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error by how the dialogue layer should react to it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUpstream is a transport or decoding failure of a backend call.
	KindUpstream
	// KindValidation is a backend refusal of otherwise well-formed input (e.g. slot taken).
	KindValidation
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// CustomError carries a message, optional key/value arguments, a kind and a wrapped cause.
type CustomError struct {
	message string
	kind    Kind
	args    map[string]interface{}
	wrapped error
}

// New creates a new CustomError instance.
func New(message string) *CustomError {
	return &CustomError{
		message: message,
		args:    make(map[string]interface{}),
	}
}

func Upstream(message string) *CustomError   { return New(message).As(KindUpstream) }
func Validation(message string) *CustomError { return New(message).As(KindValidation) }
func NotFound(message string) *CustomError   { return New(message).As(KindNotFound) }

// Error implements the error interface.
func (e *CustomError) Error() string {
	return e.fullErrorString()
}

// Message returns the bare message without args or cause, suitable for end users.
func (e *CustomError) Message() string {
	return e.message
}

// Arg adds an argument to the error.
func (e *CustomError) Arg(key string, value interface{}) *CustomError {
	e.args[key] = value
	return e
}

// As sets the error kind.
func (e *CustomError) As(kind Kind) *CustomError {
	e.kind = kind
	return e
}

// Wrap wraps another error (can be of the same type or a standard error).
func (e *CustomError) Wrap(err error) *CustomError {
	if err != nil {
		e.wrapped = err
	}
	return e
}

// Unwrap returns the wrapped error if any.
func (e *CustomError) Unwrap() error {
	return e.wrapped
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	for err != nil {
		var ce *CustomError
		if !errors.As(err, &ce) {
			return KindUnknown
		}
		if ce.kind != KindUnknown {
			return ce.kind
		}
		err = ce.wrapped
	}
	return KindUnknown
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// fullErrorString renders "{msg: <message>, kind: <kind>, args: <args>, wrappedError: {<cause>}}".
func (e *CustomError) fullErrorString() string {
	var b strings.Builder

	b.WriteString("{msg: ")
	b.WriteString(e.message)

	if e.kind != KindUnknown {
		b.WriteString(", kind: ")
		b.WriteString(e.kind.String())
	}

	if len(e.args) > 0 {
		keys := make([]string, 0, len(e.args))
		for k := range e.args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s:%v", k, e.args[k]))
		}
		b.WriteString(", args: [")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString("]")
	}

	if e.wrapped != nil {
		var inner *CustomError
		if errors.As(e.wrapped, &inner) {
			b.WriteString(", wrappedError: ")
			b.WriteString(inner.fullErrorString())
		} else {
			b.WriteString(", wrappedError: {")
			b.WriteString(e.wrapped.Error())
			b.WriteString("}")
		}
	}

	b.WriteString("}")
	return b.String()
}
