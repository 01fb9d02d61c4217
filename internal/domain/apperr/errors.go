package apperr

import (
	"errors"
	"fmt"
)

// Code is the stable, machine-readable identifier of a business error.
type Code string

const (
	CodeMinDepositAmount       Code = "MIN_AMOUNT_VIOLATION"
	CodeInvalidConfirmation    Code = "INVALID_SMS_CODE"
	CodeRequestNotFound        Code = "REQUEST_NOT_FOUND"
	CodeDepositNotFound        Code = "DEPOSIT_NOT_FOUND"
	CodeRefillNotAllowed       Code = "REFILL_DEPOSIT_ERROR"
	CodeIllegalTransition      Code = "ILLEGAL_STATUS_TRANSITION"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeCustomerNotFound       Code = "CUSTOMER_NOT_FOUND"
	CodeUpstreamBadRequest     Code = "UPSTREAM_BAD_REQUEST"
	CodeUpstreamUnavailable    Code = "UPSTREAM_UNAVAILABLE"
	CodeValidation             Code = "VALIDATION_ERROR"
	CodeInternal               Code = "INTERNAL_ERROR"
)

// Error is a domain error: a stable code, a human message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, ErrDepositNotFound)
// holds for copies produced by Withf/Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e with a more specific message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: cause}
}

var (
	ErrMinDepositAmount        = &Error{Code: CodeMinDepositAmount, Message: "minimum amount to open a deposit is 10000"}
	ErrInvalidConfirmationCode = &Error{Code: CodeInvalidConfirmation, Message: "invalid confirmation code"}
	ErrRequestNotFound         = &Error{Code: CodeRequestNotFound, Message: "request not found"}
	ErrDepositNotFound         = &Error{Code: CodeDepositNotFound, Message: "deposit not found"}
	ErrRefillNotAllowed        = &Error{Code: CodeRefillNotAllowed, Message: "deposit terms do not allow refill"}
	ErrIllegalTransition       = &Error{Code: CodeIllegalTransition, Message: "illegal request status transition"}
	ErrConcurrentModification  = &Error{Code: CodeConcurrentModification, Message: "request was modified concurrently"}
	ErrCustomerNotFound        = &Error{Code: CodeCustomerNotFound, Message: "customer not found"}
	ErrUpstreamBadRequest      = &Error{Code: CodeUpstreamBadRequest, Message: "account service rejected the operation"}
	ErrUpstreamUnavailable     = &Error{Code: CodeUpstreamUnavailable, Message: "upstream service unavailable"}
	ErrValidation              = &Error{Code: CodeValidation, Message: "validation failed"}
)

// CodeOf extracts the code of a domain error, or CodeInternal for anything else.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
