package domain

import "errors"

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates a missing, expired, or invalid token.
	// Callers must clear the stored token and treat the user as logged
	// out.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMutationInFlight indicates a move or delete is already
	// outstanding for the session; the action must be retried once the
	// first command resolves.
	ErrMutationInFlight = errors.New("mutation already in flight for session")
	// ErrNotLoggedIn indicates no token is available for an
	// authenticated call.
	ErrNotLoggedIn = errors.New("not logged in")
)
