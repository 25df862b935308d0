package models

// CheckoutState discriminates the result surface of the checkout saga.
type CheckoutState string

const (
	// StateAwaitingPayment is a progress marker stored while the hosted
	// checkout is open; it is never a terminal saga result.
	StateAwaitingPayment CheckoutState = "awaiting_payment"

	StateConfirmed          CheckoutState = "confirmed"
	StateCancelled          CheckoutState = "cancelled"
	StateValidationError    CheckoutState = "validation_error"
	StateGatewayOrderError  CheckoutState = "gateway_order_error"
	StateGatewayError       CheckoutState = "gateway_error"
	StateVerificationFailed CheckoutState = "verification_failed"
	StateBookingFailed      CheckoutState = "booking_error"
)

// Terminal reports whether the state ends the saga.
func (s CheckoutState) Terminal() bool {
	return s != StateAwaitingPayment
}

// CheckoutResult is the discriminated outcome exposed to the presentation layer.
type CheckoutResult struct {
	State         CheckoutState  `json:"state"`
	Booking       *Booking       `json:"booking,omitempty"`
	MissingFields []string       `json:"missingFields,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Intent        *PaymentIntent `json:"intent,omitempty"`
}
