package apperrors

import "errors"

var (
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
)
