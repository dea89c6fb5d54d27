package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyManifest      = errors.New("uploaded design manifest is empty")
	ErrInvalidManifest    = errors.New("invalid design manifest")
	ErrPaymentNotVerified = errors.New("payment verification failed")
)
