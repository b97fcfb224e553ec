package service

import "errors"

// Auth failures. Transports must not tell these apart on the wire; they exist
// so logs and metrics can.
var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrExpired             = errors.New("expired")
	ErrBadSignature        = errors.New("bad_signature")
	ErrContextMismatch     = errors.New("context_mismatch")
	ErrNotFound            = errors.New("not_found")
	ErrFingerprintMismatch = errors.New("fingerprint_mismatch")
	ErrNotOwner            = errors.New("not_owner")
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrAccountExists  = errors.New("account_exists")
)

// IsAuthFailure reports whether err should surface as a generic
// "unauthorized" to the caller.
func IsAuthFailure(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrBadSignature),
		errors.Is(err, ErrContextMismatch),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrFingerprintMismatch),
		errors.Is(err, ErrNotOwner):
		return true
	}
	return false
}
