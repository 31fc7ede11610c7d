package model

import (
	"github.com/pkg/errors"
)

// Code is the stable identifier of a failure kind, it is what clients of the
// transaction family see in the invalid transaction message
type Code uint32

// authorization errors take 10-19, state errors 20-29, input errors 30-39,
// transfer errors 40-49
const (
	CodeUnauthorized        Code = 10
	CodeNotAuthorizedSigner Code = 11

	CodeAlreadySigner      Code = 20
	CodeNotSigner          Code = 21
	CodeProposalNotFound   Code = 22
	CodeAlreadyExecuted    Code = 23
	CodeDuplicateSignature Code = 24
	CodeQuorumNotMet       Code = 25

	CodeInvalidAmount    Code = 30
	CodeInvalidRecipient Code = 31
	CodeInvalidSigner    Code = 32
	CodeInvalidQuorum    Code = 33
	CodeInvalidPayload   Code = 34

	CodeTransferFailed    Code = 40
	CodeInsufficientFunds Code = 41
)

// Error is a typed failure result; match it with errors.Is against the Err* values
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrUnauthorized        = &Error{CodeUnauthorized, "unauthorized"}
	ErrNotAuthorizedSigner = &Error{CodeNotAuthorizedSigner, "not an authorized signer"}

	ErrAlreadySigner      = &Error{CodeAlreadySigner, "already a signer"}
	ErrNotSigner          = &Error{CodeNotSigner, "not a signer"}
	ErrProposalNotFound   = &Error{CodeProposalNotFound, "proposal not found"}
	ErrAlreadyExecuted    = &Error{CodeAlreadyExecuted, "proposal already executed"}
	ErrDuplicateSignature = &Error{CodeDuplicateSignature, "duplicate signature"}
	ErrQuorumNotMet       = &Error{CodeQuorumNotMet, "quorum not met"}

	ErrInvalidAmount    = &Error{CodeInvalidAmount, "invalid amount"}
	ErrInvalidRecipient = &Error{CodeInvalidRecipient, "invalid recipient"}
	ErrInvalidSigner    = &Error{CodeInvalidSigner, "invalid signer identity"}
	ErrInvalidQuorum    = &Error{CodeInvalidQuorum, "invalid quorum"}
	ErrInvalidPayload   = &Error{CodeInvalidPayload, "invalid payload"}

	ErrTransferFailed    = &Error{CodeTransferFailed, "transfer failed"}
	ErrInsufficientFunds = &Error{CodeInsufficientFunds, "insufficient funds"}
)

// CodeOf returns the code of the first typed failure in the chain of err
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsAuthorizationErr reports whether err is a rejected caller
func IsAuthorizationErr(err error) bool {
	code, ok := CodeOf(err)
	return ok && code >= 10 && code < 20
}

// causedError is a typed failure carrying the error that triggered it
type causedError struct {
	kind  *Error
	cause error
}

// WithCause returns an error matching kind for errors.Is and CodeOf while still
// unwrapping to cause
func WithCause(kind *Error, cause error) error {
	return &causedError{kind: kind, cause: cause}
}

func (e *causedError) Error() string {
	return e.kind.Msg + ": " + e.cause.Error()
}

func (e *causedError) Unwrap() error {
	return e.cause
}

func (e *causedError) Is(target error) bool {
	return target == e.kind
}

func (e *causedError) As(target interface{}) bool {
	if t, ok := target.(**Error); ok {
		*t = e.kind
		return true
	}
	return false
}

var byCode = map[Code]*Error{}

func init() {
	for _, e := range []*Error{
		ErrUnauthorized, ErrNotAuthorizedSigner,
		ErrAlreadySigner, ErrNotSigner, ErrProposalNotFound, ErrAlreadyExecuted, ErrDuplicateSignature, ErrQuorumNotMet,
		ErrInvalidAmount, ErrInvalidRecipient, ErrInvalidSigner, ErrInvalidQuorum, ErrInvalidPayload,
		ErrTransferFailed, ErrInsufficientFunds,
	} {
		byCode[e.Code] = e
	}
}

// ErrorByCode returns the failure kind registered under code
func ErrorByCode(code Code) (*Error, bool) {
	e, ok := byCode[code]
	return e, ok
}
