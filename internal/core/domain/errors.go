package domain

import (
	"errors"
	"fmt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrMissingField        = errors.New("missing required field")
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("email or password is wrong")
	ErrUnauthorized        = errors.New("not authorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidSubscription = errors.New("invalid subscription type")
	ErrMissingFile         = errors.New("missing file")
	ErrInvalidFile         = errors.New("file is not a supported image")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes")
)

// MissingField reports an absent required field by name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}
