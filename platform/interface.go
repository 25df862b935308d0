package platform

import (
	"context"

	"asap/models"
)

// Payment status recorded on booking creation. Distinct from the booking
// lifecycle status, which always starts at Pending on the platform side.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// ListScope restricts an operator booking listing. The zero value lists
// everything visible to the operator.
type ListScope struct {
	Customer string `json:"customer,omitempty"` // phone or email filter
}

// Key returns a stable cache key for the scope.
func (s ListScope) Key() string {
	if s.Customer == "" {
		return "bookings:all"
	}
	return "bookings:customer:" + s.Customer
}

// BookingPatch is a partial update applied to a booking. Nil fields are left
// untouched by the platform.
type BookingPatch struct {
	Status      *models.BookingStatus `json:"status,omitempty"`
	IsCancelled *bool                 `json:"isCancelled,omitempty"`
	Review      *string               `json:"review,omitempty"`
}

// Client is the boundary to the remote platform API that owns cart pricing,
// catalog storage, user records and booking persistence.
type Client interface {
	// CreatePaymentIntent registers a gateway order for the given amount.
	// It has no side effect beyond intent creation.
	CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string) (*models.PaymentIntent, error)

	// VerifyPayment checks the authenticity of a payment proof. Pure
	// verification; it never creates a booking.
	VerifyPayment(ctx context.Context, proof models.PaymentProof) (bool, error)

	// CreateBooking persists a booking. It is the only call that does, and
	// callers must invoke it at most once per successful checkout.
	CreateBooking(ctx context.Context, draft models.BookingDraft, proof *models.PaymentProof, paymentStatus string) (*models.Booking, error)

	// ListBookings fetches all bookings visible under the scope.
	ListBookings(ctx context.Context, scope ListScope) ([]models.Booking, error)

	// UpdateBooking applies a partial update and returns the platform's
	// authoritative copy of the booking.
	UpdateBooking(ctx context.Context, id string, patch BookingPatch) (*models.Booking, error)
}
