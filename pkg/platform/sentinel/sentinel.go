package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors:
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a unique field (email) is already taken
//   - ErrExpired: token has expired or was revoked
//   - ErrUnavailable: backing service could not be reached
//   - ErrInvalidState: operation called with arguments the store cannot honour
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
