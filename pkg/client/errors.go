package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// Kind classifies a failed call so callers never inspect message text.
type Kind int

const (
	// KindTimeout means the request did not finish within the client timeout.
	KindTimeout Kind = iota + 1
	// KindUnreachable means the server could not be dialled.
	KindUnreachable
	// KindNetwork is any other transport failure.
	KindNetwork
	// KindUnauthorized is a 401/403 from the server or a missing local token.
	KindUnauthorized
	// KindValidation is a 400 from the server or a locally rejected form.
	KindValidation
	// KindNotFound is a 404.
	KindNotFound
	// KindServer is a 5xx or any other unexpected status.
	KindServer
	// KindDecode means the response body was not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure happened below HTTP. Transient
// failures are retryable and never end the session.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindUnreachable, KindNetwork:
		return true
	default:
		return false
	}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

func transportError(err error) *Error {
	var netErr net.Error
	var dnsErr *net.DNSError
	var opErr *net.OpError

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, syscall.ECONNREFUSED), errors.As(err, &dnsErr),
		errors.As(err, &opErr) && opErr.Op == "dial":
		return &Error{Kind: KindUnreachable, Message: "server unreachable", Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: "network error", Err: err}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: http.StatusText(status)}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		e.Message = eb.Error
		e.Code = eb.Code
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusBadRequest:
		e.Kind = KindValidation
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	default:
		e.Kind = KindServer
	}
	return e
}
