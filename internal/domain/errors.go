package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrMissingField       = errors.New("all fields are required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters")
	ErrInvalidInput       = errors.New("invalid input")
)
