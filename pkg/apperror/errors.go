// Package apperror is this coordinator's structured error type, carrying a
// machine-readable kind, a human-readable message, an HTTP status for the
// (out-of-core-scope) transport shim, and an optional wrapped cause.
package apperror

import (
	"fmt"
	"net/http"
)

// Kind is the language-neutral error taxonomy of spec.md §7.
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindInvalidState        Kind = "InvalidState"
	KindInvalidSecret       Kind = "InvalidSecret"
	KindUnauthorized        Kind = "Unauthorized"
	KindNotYetOpen          Kind = "NotYetOpen"
	KindWindowClosed        Kind = "WindowClosed"
	KindInsufficientFunding Kind = "InsufficientFunding"
	KindInvalidTransaction  Kind = "InvalidTransaction"
	KindLedgerUnavailable   Kind = "LedgerUnavailable"
	KindLedgerTimeout       Kind = "LedgerTimeout"
	KindSettlementFailed    Kind = "SettlementFailed"
	KindInvalidParameters   Kind = "InvalidParameters"
)

var httpStatus = map[Kind]int{
	KindNotFound:            http.StatusNotFound,
	KindInvalidState:        http.StatusConflict,
	KindInvalidSecret:       http.StatusBadRequest,
	KindUnauthorized:        http.StatusForbidden,
	KindNotYetOpen:          http.StatusConflict,
	KindWindowClosed:        http.StatusConflict,
	KindInsufficientFunding: http.StatusBadRequest,
	KindInvalidTransaction:  http.StatusBadRequest,
	KindLedgerUnavailable:   http.StatusServiceUnavailable,
	KindLedgerTimeout:       http.StatusGatewayTimeout,
	KindSettlementFailed:    http.StatusBadGateway,
	KindInvalidParameters:   http.StatusBadRequest,
}

// Error is the structured error every package in this module that can fail
// a caller-facing operation returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error's kind to a status code for the HTTP shim.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error carrying an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error            { return New(KindNotFound, message) }
func InvalidState(message string) *Error        { return New(KindInvalidState, message) }
func InvalidSecret(message string) *Error       { return New(KindInvalidSecret, message) }
func Unauthorized(message string) *Error        { return New(KindUnauthorized, message) }
func NotYetOpen(message string) *Error          { return New(KindNotYetOpen, message) }
func WindowClosed(message string) *Error        { return New(KindWindowClosed, message) }
func InsufficientFunding(message string) *Error { return New(KindInsufficientFunding, message) }
func InvalidTransaction(message string) *Error  { return New(KindInvalidTransaction, message) }
func InvalidParameters(message string) *Error   { return New(KindInvalidParameters, message) }

func LedgerUnavailable(err error) *Error {
	return Wrap(KindLedgerUnavailable, "ledger adapter unavailable", err)
}

func LedgerTimeout(err error) *Error {
	return Wrap(KindLedgerTimeout, "ledger operation timed out", err)
}

func SettlementFailed(message string, err error) *Error {
	return Wrap(KindSettlementFailed, message, err)
}
