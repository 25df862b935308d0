package booking

import "errors"

var (
	// ErrInvalidTransition rejects an illegal operator status change before
	// any network call is made.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrBookingNotFound means the booking is not in the operator's fetched list.
	ErrBookingNotFound = errors.New("booking not found")
)
