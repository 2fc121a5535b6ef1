package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped) so
// services can translate them into domain errors or recover locally:
// - ErrNotFound: key or record does not exist
// - ErrExpired: a stored snapshot outlived its retention window
// - ErrConflict: a record with the same identity already exists
// - ErrInvalidState: entity in wrong state for requested transition
// - ErrUnavailable: backing store temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
