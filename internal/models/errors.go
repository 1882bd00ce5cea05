package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAccount indicates the user already holds an account of that currency and type
	ErrDuplicateAccount = errors.New("duplicate account")

	// ErrDuplicateNumber indicates a generated account or card number is already taken
	ErrDuplicateNumber = errors.New("duplicate number")
)
