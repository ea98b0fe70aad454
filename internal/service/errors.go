package service

import "errors"

var (
	// ErrInvalid marks validation failures; handlers map it to 400.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound marks direct-id lookups that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks access by a non-owner.
	ErrForbidden = errors.New("forbidden")
)
