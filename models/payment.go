package models

// PaymentIntent is a gateway order created ahead of an online payment.
// It exists only for online methods and is dropped when the saga ends.
type PaymentIntent struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
	Currency         string `json:"currency"`
}

// PaymentProof is the identifier triple a gateway returns after a successful
// payment. A proof must never produce more than one booking.
type PaymentProof struct {
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewaySignature string `json:"gatewaySignature"`
}

// CheckoutPrefill is the contact data handed to the hosted checkout UI.
type CheckoutPrefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
