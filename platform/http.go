package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"asap/models"
)

// HTTPClient talks JSON over HTTP to the platform API. Every call carries a
// bounded timeout; no call is retried.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPClient builds a platform client for the given base URL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Timeout: timeout,
		Client:  &http.Client{},
	}
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &APIError{Op: op, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return &APIError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Op: op, Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func (c *HTTPClient) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, currency string) (*models.PaymentIntent, error) {
	req := struct {
		AmountMinorUnits int64  `json:"amountMinorUnits"`
		Currency         string `json:"currency"`
	}{amountMinorUnits, currency}

	var resp struct {
		GatewayOrderID string `json:"gatewayOrderId"`
	}
	if err := c.do(ctx, "create-payment-intent", http.MethodPost, "/api/payments/orders", req, &resp); err != nil {
		return nil, err
	}
	if resp.GatewayOrderID == "" {
		return nil, &APIError{Op: "create-payment-intent", Message: "response missing gatewayOrderId"}
	}
	return &models.PaymentIntent{
		GatewayOrderID:   resp.GatewayOrderID,
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
	}, nil
}

func (c *HTTPClient) VerifyPayment(ctx context.Context, proof models.PaymentProof) (bool, error) {
	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(ctx, "verify-payment", http.MethodPost, "/api/payments/verify", proof, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

func (c *HTTPClient) CreateBooking(ctx context.Context, draft models.BookingDraft, proof *models.PaymentProof, paymentStatus string) (*models.Booking, error) {
	req := struct {
		Draft         models.BookingDraft  `json:"draft"`
		PaymentProof  *models.PaymentProof `json:"paymentProof"`
		PaymentStatus string               `json:"status"`
	}{draft, proof, paymentStatus}

	var booking models.Booking
	if err := c.do(ctx, "create-booking", http.MethodPost, "/api/bookings", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *HTTPClient) ListBookings(ctx context.Context, scope ListScope) ([]models.Booking, error) {
	path := "/api/bookings"
	if scope.Customer != "" {
		path += "?customer=" + url.QueryEscape(scope.Customer)
	}
	var bookings []models.Booking
	if err := c.do(ctx, "list-bookings", http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *HTTPClient) UpdateBooking(ctx context.Context, id string, patch BookingPatch) (*models.Booking, error) {
	var booking models.Booking
	if err := c.do(ctx, "update-booking", http.MethodPatch, "/api/bookings/"+url.PathEscape(id), patch, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
