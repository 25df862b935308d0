package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentMethod selects between the cash-on-delivery shortcut and the hosted gateway.
type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cod"
	MethodUPI            PaymentMethod = "upi"
	MethodCard           PaymentMethod = "card"
)

// Online reports whether the method requires the hosted payment gateway.
func (m PaymentMethod) Online() bool {
	return m == MethodUPI || m == MethodCard
}

// BookingStatus is the operator-facing lifecycle status of a booking.
// Cancellation is an orthogonal flag, not a status.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusOnTheWay  BookingStatus = "OnTheWay"
	StatusCompleted BookingStatus = "Completed"
)

// ContactInfo identifies the customer placing a booking.
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Address is the delivery address attached to a booking.
type Address struct {
	FlatBuilding string `json:"flatBuilding"`
	Landmark     string `json:"landmark"`
	Street       string `json:"street"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
}

// BookingDraft carries everything checkout needs before a booking exists.
// It is owned exclusively by the checkout saga until a terminal state.
type BookingDraft struct {
	Contact       ContactInfo   `json:"contact"`
	Address       Address       `json:"address"`
	PreferredTime string        `json:"preferredTime"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Lines         []CartLine    `json:"lines"`
	TotalAmount   float64       `json:"totalAmount"`
}

// ServiceLine is one service entry on a persisted booking.
type ServiceLine struct {
	ServiceID string  `json:"serviceId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

// ServiceLines decodes the wire representation of a booking's line-items.
// The platform API historically persisted them either as a JSON array or as a
// JSON string containing the encoded array; both shapes are accepted.
type ServiceLines []ServiceLine

func (s *ServiceLines) UnmarshalJSON(data []byte) error {
	var lines []ServiceLine
	if err := json.Unmarshal(data, &lines); err == nil {
		*s = lines
		return nil
	}
	var embedded string
	if err := json.Unmarshal(data, &embedded); err != nil {
		return fmt.Errorf("service lines are neither an array nor an encoded string: %w", err)
	}
	if err := json.Unmarshal([]byte(embedded), &lines); err != nil {
		return fmt.Errorf("embedded service lines are malformed: %w", err)
	}
	*s = lines
	return nil
}

// Booking is a persisted booking record as held by the platform API.
// The platform's copy is authoritative; this process never derives fields locally.
type Booking struct {
	ID            string        `json:"id"`
	Status        BookingStatus `json:"status"`
	IsCancelled   bool          `json:"isCancelled"`
	Review        *string       `json:"review,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
	Services      ServiceLines  `json:"services"`
	Contact       ContactInfo   `json:"contact"`
	Address       Address       `json:"address"`
	PreferredTime string        `json:"preferredTime,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt,omitempty"`
}
