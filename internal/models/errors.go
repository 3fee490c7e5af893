package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the client, codec and mailer
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnreachable
	KindHTTPError
	KindMalformedResponse
	KindMalformedPayload
	KindInvalidPayload
	KindNotFound
	KindDeliveryFailed
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "unknown",
	KindUnreachable:       "unreachable",
	KindHTTPError:         "http error",
	KindMalformedResponse: "malformed response",
	KindMalformedPayload:  "malformed payload",
	KindInvalidPayload:    "invalid payload",
	KindNotFound:          "not found",
	KindDeliveryFailed:    "delivery failed",
}

// String returns the kind name
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a typed failure. Status and Body are only set for KindHTTPError.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Kind == KindHTTPError {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
		if e.Body != "" {
			msg += ": " + truncateBody(e.Body)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind so errors.Is(err, &Error{Kind: k}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// NewError creates a typed error
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewHTTPError creates a KindHTTPError carrying the status code and body
func NewHTTPError(op string, status int, body string) *Error {
	return &Error{Kind: KindHTTPError, Op: op, Status: status, Body: body}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func truncateBody(body string) string {
	const max = 512
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}
