package booking

import (
	"context"

	"asap/models"
	"asap/platform"
)

// Resume drives a begun checkout to its terminal state.
type Resume func(ctx context.Context) *models.CheckoutResult

// CheckoutService drives a priced booking draft to a terminal checkout state.
type CheckoutService interface {
	// Submit runs the whole saga synchronously.
	Submit(ctx context.Context, checkoutID string, draft models.BookingDraft) *models.CheckoutResult

	// Begin runs the saga up to the hosted-checkout handoff so callers can
	// return the gateway order before the callback wait. A nil resume means
	// the result is already terminal.
	Begin(ctx context.Context, checkoutID string, draft models.BookingDraft) (*models.CheckoutResult, Resume)
}

// LifecycleService applies operator-issued transitions to fetched bookings.
type LifecycleService interface {
	List(ctx context.Context, scope platform.ListScope) ([]models.Booking, error)
	Advance(ctx context.Context, id string, next models.BookingStatus) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	AttachReview(ctx context.Context, id, review string) (*models.Booking, error)
}
