package services

import "errors"

// Error kinds surfaced by the service layer. Handlers map these to HTTP
// statuses; everything else is treated as an internal error.
var (
	// ErrNotFound: the referenced entry, token, or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the actor is not permitted to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInviteUsed: the invite token was already consumed.
	ErrInviteUsed = errors.New("invite already used")
	// ErrInviteExpired: the invite token's expiry has passed.
	ErrInviteExpired = errors.New("invite expired")
	// ErrUnavailable: the persistence layer could not serve a write.
	ErrUnavailable = errors.New("storage unavailable")
)
