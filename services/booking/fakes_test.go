package booking

import (
	"context"
	"sync"
	"time"

	"asap/models"
	"asap/platform"
	"asap/services/payment"
)

type createCall struct {
	draft         models.BookingDraft
	proof         *models.PaymentProof
	paymentStatus string
}

// fakePlatform records every collaborator call so tests can assert that
// failure paths issue no further network traffic.
type fakePlatform struct {
	mu sync.Mutex

	intentCalls int
	verifyCalls int
	createCalls int
	listCalls   int
	updateCalls int

	intentErr error
	verified  bool
	verifyErr error

	createErr error
	creates   []createCall
	booking   *models.Booking

	bookings  []models.Booking
	listErr   error
	updateErr error
	updated   *models.Booking
}

func (f *fakePlatform) CreatePaymentIntent(_ context.Context, amountMinorUnits int64, currency string) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intentCalls++
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	return &models.PaymentIntent{
		GatewayOrderID:   "order_test",
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
	}, nil
}

func (f *fakePlatform) VerifyPayment(_ context.Context, _ models.PaymentProof) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verified, f.verifyErr
}

func (f *fakePlatform) CreateBooking(_ context.Context, draft models.BookingDraft, proof *models.PaymentProof, paymentStatus string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, createCall{draft: draft, proof: proof, paymentStatus: paymentStatus})
	if f.booking != nil {
		return f.booking, nil
	}
	return &models.Booking{
		ID:            "bk_test",
		Status:        models.StatusPending,
		TotalAmount:   draft.TotalAmount,
		Contact:       draft.Contact,
		Address:       draft.Address,
		PaymentMethod: draft.PaymentMethod,
	}, nil
}

func (f *fakePlatform) ListBookings(_ context.Context, _ platform.ListScope) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Booking, len(f.bookings))
	copy(out, f.bookings)
	return out, nil
}

func (f *fakePlatform) UpdateBooking(_ context.Context, id string, patch platform.BookingPatch) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated != nil {
		return f.updated, nil
	}
	// Echo the patch onto the stored copy, as the real platform would.
	for _, b := range f.bookings {
		if b.ID != id {
			continue
		}
		if patch.Status != nil {
			b.Status = *patch.Status
		}
		if patch.IsCancelled != nil {
			b.IsCancelled = *patch.IsCancelled
		}
		if patch.Review != nil {
			b.Review = patch.Review
		}
		return &b, nil
	}
	return nil, &platform.APIError{Op: "update-booking", Status: 404, Message: "not found"}
}

// scriptedGateway hands out checkouts that resolve immediately with a
// prepared outcome. A nil outcome leaves the checkout unresolved.
type scriptedGateway struct {
	err     error
	outcome *payment.Outcome
	last    *payment.Checkout
}

func (g *scriptedGateway) NewCheckout(intent models.PaymentIntent, prefill models.CheckoutPrefill) (*payment.Checkout, error) {
	if g.err != nil {
		return nil, g.err
	}
	c := payment.NewCheckout("chk_test", intent, prefill)
	g.last = c
	if g.outcome != nil {
		switch g.outcome.Kind {
		case payment.OutcomeSuccess:
			c.Succeed(*g.outcome.Proof)
		case payment.OutcomeDismiss:
			c.Dismiss()
		case payment.OutcomeError:
			c.Fail(g.outcome.Reason)
		}
	}
	return c, nil
}

// memoryListCache is an in-process ListCache recording deletions so tests can
// assert invalidation.
type memoryListCache struct {
	mu      sync.Mutex
	entries map[string]string
	deleted []string
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{entries: make(map[string]string)}
}

func (c *memoryListCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *memoryListCache) Set(_ context.Context, key, data string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryListCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type fakeFlagger struct {
	mu    sync.Mutex
	flags []string
}

func (f *fakeFlagger) FlagGap(_ context.Context, _ string, _ models.PaymentProof, _ float64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags = append(f.flags, reason)
	return nil
}

func (f *fakeFlagger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.flags)
}
