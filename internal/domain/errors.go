package domain

import "errors"

var (
	ErrZeroAmount        = errors.New("deposit amount must be positive")
	ErrInvalidLockPeriod = errors.New("lock period is not one of the canonical durations")
	ErrInvalidIndex      = errors.New("deposit index out of range")
	ErrLockNotExpired    = errors.New("deposit is still locked")
	ErrAlreadyWithdrawn  = errors.New("deposit already withdrawn")
	ErrTransferFailed    = errors.New("funds transfer failed")

	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrIdempotencyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different payload")
)
