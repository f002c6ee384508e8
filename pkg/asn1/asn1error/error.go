package asn1error

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	UnknownError    ErrorType = iota
	MalformedLength           // eg the length runs past the end of the data
	WrongForm                 // eg a primitive encoding where constructed is required
	InvalidContent            // eg a bad varint, charset violation or REAL sub-encoding
	SchemaViolation           // eg a missing component or an unknown CHOICE alternative
	ValueShape                // eg the go value does not match the asn1 type being encoded
	Unsupported               // legal BER that is not implemented
)

var typeNames = [...]string{"unknown", "malformed-length", "wrong-form", "invalid-content", "schema-violation", "value-shape", "unsupported"}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("error-type(%d)", int(t))
	}
	return typeNames[t]
}

type Interface interface {
	error
	Type() ErrorType
}

type General struct {
	inner error
	cause error
	eType ErrorType
}

func NewErrorf(format string, args ...any) *General {
	return &General{
		inner: fmt.Errorf(format, args...),
	}
}

// New is shorthand for NewErrorf(format, args...).WithType(eType).
func New(eType ErrorType, format string, args ...any) *General {
	return NewErrorf(format, args...).WithType(eType)
}

func Wrap(err error) *General {
	return &General{
		inner: err,
	}
}

func (e *General) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.inner.Error(), e.cause.Error())
	}
	return e.inner.Error()
}

func (e *General) Type() ErrorType {
	return e.eType
}

func (e *General) Unwrap() []error {
	if e.cause != nil {
		return []error{e.inner, e.cause}
	}
	return []error{e.inner}
}

func (e *General) WithType(eType ErrorType) *General {
	e.eType = eType
	return e
}

func (e *General) WithCause(cause error) *General {
	e.cause = cause
	return e
}

// TypeOf reports the kind of the first typed error in err's chain.
func TypeOf(err error) ErrorType {
	var typed Interface
	if errors.As(err, &typed) {
		return typed.Type()
	}
	return UnknownError
}

func IsType(err error, eType ErrorType) bool {
	return err != nil && TypeOf(err) == eType
}

type List []error

func (el List) Error() string {
	if len(el) == 0 {
		return ""
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (el List) Unwrap() []error {
	return el
}

// OrNil returns nil for an empty list so callers can return it directly.
func (el List) OrNil() error {
	if len(el) == 0 {
		return nil
	}
	return el
}
