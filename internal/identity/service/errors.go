package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the identity services. The HTTP layer maps
// these onto status codes; services never see http.
var (
	ErrAccountExists      = errors.New("service: account name already in use")
	ErrEmailTaken         = errors.New("service: email already in use")
	ErrAccountNotFound    = errors.New("service: account not found")
	ErrUserNotFound       = errors.New("service: user not found")
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrForbidden          = errors.New("service: forbidden")
	ErrInvalidToken       = errors.New("service: invalid token")
	ErrTokenUsed          = errors.New("service: token already used")
	ErrTokenExpired       = errors.New("service: token expired")
	ErrInvalidAccountType = errors.New("service: invalid account type")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("service: missing or invalid field %q", e.Field)
}

func missing(field string) error {
	return &ValidationError{Field: field}
}
