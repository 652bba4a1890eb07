// Package fetcherr classifies the ways fetching drop data can fail.
//
// Every adapter and snapshot store wraps its failures in an *Error so the
// coordinator can produce a diagnostic message without caring which
// collaborator produced it.
package fetcherr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Network is a connection failure or timeout.
	Network Kind = iota + 1
	// HttpStatus is a non-2xx response.
	HttpStatus
	// ParseStructure means the expected markup or payload structure is absent.
	ParseStructure
	// NotFound means nothing has been published yet.
	NotFound
	// Decode means persisted data is malformed.
	Decode
	// Empty means the fetch succeeded but yielded zero usable records.
	Empty
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network"
	case HttpStatus:
		return "http status"
	case ParseStructure:
		return "parse structure"
	case NotFound:
		return "not found"
	case Decode:
		return "decode"
	case Empty:
		return "empty result"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	// Op names the collaborator and operation, ex. "board(inven).fetch".
	Op string
	// StatusCode is only set for HttpStatus.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Kind == HttpStatus {
		msg = fmt.Sprintf("%s %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Status(op string, code int) *Error {
	return &Error{Kind: HttpStatus, Op: op, StatusCode: code}
}

// Is reports whether any error in err's tree is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*Error); ok && fe.Kind == kind {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if Is(inner, kind) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return Is(x.Unwrap(), kind)
	}
	return false
}

// KindOf returns the kind of the first *Error in err's tree, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
