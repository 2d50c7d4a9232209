package wallet

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// EBadRequest represents a malformed or invalid request.
	EBadRequest ErrCode = "bad_request"
	// EInvalidField represents an entity field error in a repository.
	EInvalidField ErrCode = "invalid_field"
	// EThrottle represents a rate limited request.
	EThrottle ErrCode = "throttled"
	// ENotFound represents an unknown challenge, session, credential
	// or account.
	ENotFound ErrCode = "not_found"
	// EExpired represents a challenge checked after its expiry time.
	EExpired ErrCode = "expired"
	// EAttemptsExhausted represents a challenge that consumed all of
	// its verification attempts.
	EAttemptsExhausted ErrCode = "attempts_exhausted"
	// EInvalidCode represents an incorrect OTP code submission.
	EInvalidCode ErrCode = "invalid_code"
	// ENoCredentials represents an account with no registered
	// WebAuthn credentials. Clients should fall back to OTP.
	ENoCredentials ErrCode = "no_credentials"
	// EWebAuthn represents a failed attestation or assertion.
	// Clients should fall back to OTP.
	EWebAuthn ErrCode = "webauthn_failed"
	// EConflict represents a duplicate registration.
	EConflict ErrCode = "conflict"
	// EInvalidToken represents an invalid JWT token error.
	EInvalidToken ErrCode = "invalid_token"
	// EExpiredToken represents a JWT token past its expiry.
	EExpiredToken ErrCode = "expired_token"
	// EDeliveryFailed represents a failed out-of-band delivery.
	EDeliveryFailed ErrCode = "delivery_failed"
	// EInternal represents an internal error outside of our domain.
	EInternal ErrCode = "internal"
)

// Error represents an error within the wallet domain.
type Error interface {
	Error() string
	Message() string
	Code() ErrCode
}

// ErrCode is a machine readable code representing
// an error within the wallet domain.
type ErrCode string

// ErrBadRequest represents a malformed or invalid request.
type ErrBadRequest string

func (e ErrBadRequest) Code() ErrCode   { return EBadRequest }
func (e ErrBadRequest) Message() string { return string(e) }
func (e ErrBadRequest) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrInvalidField represents an error related to missing or invalid
// entity fields supplied to a repository.
type ErrInvalidField string

func (e ErrInvalidField) Code() ErrCode   { return EInvalidField }
func (e ErrInvalidField) Message() string { return string(e) }
func (e ErrInvalidField) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrThrottle represents a rate limited request.
type ErrThrottle string

func (e ErrThrottle) Code() ErrCode   { return EThrottle }
func (e ErrThrottle) Message() string { return string(e) }
func (e ErrThrottle) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrNotFound represents an unknown challenge, session, credential
// or account.
type ErrNotFound string

func (e ErrNotFound) Code() ErrCode   { return ENotFound }
func (e ErrNotFound) Message() string { return string(e) }
func (e ErrNotFound) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrExpired represents a challenge past its expiry time.
type ErrExpired string

func (e ErrExpired) Code() ErrCode   { return EExpired }
func (e ErrExpired) Message() string { return string(e) }
func (e ErrExpired) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrAttemptsExhausted represents a challenge with no verification
// attempts remaining.
type ErrAttemptsExhausted string

func (e ErrAttemptsExhausted) Code() ErrCode   { return EAttemptsExhausted }
func (e ErrAttemptsExhausted) Message() string { return string(e) }
func (e ErrAttemptsExhausted) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code(), string(e))
}

// ErrInvalidCode represents an incorrect OTP code submission.
type ErrInvalidCode string

func (e ErrInvalidCode) Code() ErrCode   { return EInvalidCode }
func (e ErrInvalidCode) Message() string { return string(e) }
func (e ErrInvalidCode) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrNoCredentials represents an account with no registered WebAuthn
// credentials.
type ErrNoCredentials string

func (e ErrNoCredentials) Code() ErrCode   { return ENoCredentials }
func (e ErrNoCredentials) Message() string { return string(e) }
func (e ErrNoCredentials) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrWebAuthn represents a failed attestation or assertion.
type ErrWebAuthn string

func (e ErrWebAuthn) Code() ErrCode   { return EWebAuthn }
func (e ErrWebAuthn) Message() string { return string(e) }
func (e ErrWebAuthn) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrConflict represents a duplicate registration.
type ErrConflict string

func (e ErrConflict) Code() ErrCode   { return EConflict }
func (e ErrConflict) Message() string { return string(e) }
func (e ErrConflict) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrInvalidToken represents an error related to JWT token
// validation such as signing or format errors.
type ErrInvalidToken string

func (e ErrInvalidToken) Code() ErrCode   { return EInvalidToken }
func (e ErrInvalidToken) Message() string { return string(e) }
func (e ErrInvalidToken) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrExpiredToken represents a JWT token past its expiry.
type ErrExpiredToken string

func (e ErrExpiredToken) Code() ErrCode   { return EExpiredToken }
func (e ErrExpiredToken) Message() string { return string(e) }
func (e ErrExpiredToken) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// ErrDeliveryFailed represents a failed out-of-band delivery. It is
// soft: delivery falls back to an always available sink.
type ErrDeliveryFailed string

func (e ErrDeliveryFailed) Code() ErrCode   { return EDeliveryFailed }
func (e ErrDeliveryFailed) Message() string { return string(e) }
func (e ErrDeliveryFailed) Error() string   { return fmt.Sprintf("[%s] %s", e.Code(), string(e)) }

// DomainError returns a domain error if available.
func DomainError(err error) Error {
	if err == nil {
		return nil
	}

	var e Error
	if stderrors.As(err, &e) {
		return e
	}

	if e, ok := errors.Cause(err).(Error); ok {
		return e
	}

	return nil
}

// ErrorCode returns the code associated with a domain error.
// If an error is not part of the wallet domain, it returns EInternal.
func ErrorCode(err error) ErrCode {
	if err == nil {
		return ErrCode("")
	}

	e := DomainError(err)
	if e == nil {
		return EInternal
	}

	return e.Code()
}

// FallbackToOTP reports whether an error signals that a client
// should degrade from WebAuthn to the OTP flow.
func FallbackToOTP(err error) bool {
	switch ErrorCode(err) {
	case ENoCredentials, EWebAuthn:
		return true
	default:
		return false
	}
}
