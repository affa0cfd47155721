package services

import (
	"errors"
	"fmt"
)

// Sentinel errors, usable with errors.Is. Everything here is a local,
// recoverable condition the presentation layer shows to the user; nothing
// in the engine is fatal to the process.
var (
	// ErrNotFound is returned when a command names an id absent from the
	// store, so callers can distinguish "already in that state" from
	// "target doesn't exist".
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for a status outside the permitted
	// set or a transition attempted from a closed state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation is returned for malformed command input.
	ErrValidation = errors.New("validation failed")

	// ErrExcessReceipt is returned when a partial receipt would push an
	// item's received quantity past its ordered quantity.
	ErrExcessReceipt = errors.New("received quantity exceeds ordered quantity")

	// ErrTokenInvalid is returned when a verification code is absent or
	// does not match the live token for the identity.
	ErrTokenInvalid = errors.New("verification code invalid")

	// ErrTokenExpired is returned when the verification code is past its
	// expiry.
	ErrTokenExpired = errors.New("verification code expired")

	// ErrInvalidCredentials is returned by the login boundary.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError carries the resource kind and id a command referenced.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransitionError describes a rejected status transition.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ExcessReceiptError details a partial receipt that overshot the order line.
type ExcessReceiptError struct {
	ItemID    string
	Ordered   int
	Received  int
	Requested int
}

func (e *ExcessReceiptError) Error() string {
	return fmt.Sprintf("item %s: receiving %d would exceed ordered %d (already received %d)",
		e.ItemID, e.Requested, e.Ordered, e.Received)
}

func (e *ExcessReceiptError) Unwrap() error { return ErrExcessReceipt }

// IsClientError reports whether the error is due to invalid caller input
// rather than an engine failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrExcessReceipt) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrInvalidCredentials)
}
