package payment

import (
	"context"
	"sync"

	"asap/models"
)

// OutcomeKind discriminates the single terminal signal of a hosted checkout.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeDismiss OutcomeKind = "dismiss"
	OutcomeError   OutcomeKind = "error"
)

// Outcome is the one-shot result delivered by the hosted checkout UI.
type Outcome struct {
	Kind   OutcomeKind
	Proof  *models.PaymentProof
	Reason string
}

// Checkout represents one opening of the hosted payment UI. Exactly one of
// Succeed, Dismiss or Fail is honored; later resolutions are dropped.
type Checkout struct {
	ID      string
	Intent  models.PaymentIntent
	Prefill models.CheckoutPrefill

	resolve sync.Once
	outcome chan Outcome
}

// NewCheckout builds a single-use checkout with its one-shot outcome channel.
func NewCheckout(id string, intent models.PaymentIntent, prefill models.CheckoutPrefill) *Checkout {
	return &Checkout{
		ID:      id,
		Intent:  intent,
		Prefill: prefill,
		outcome: make(chan Outcome, 1),
	}
}

// Open marks the checkout as presented to the customer. The caller must hold
// a ready gateway handle; Open itself only guards against a dead context.
func (c *Checkout) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Outcome returns the channel on which the terminal signal is published.
func (c *Checkout) Outcome() <-chan Outcome {
	return c.outcome
}

// Succeed resolves the checkout with a payment proof.
func (c *Checkout) Succeed(proof models.PaymentProof) {
	c.deliver(Outcome{Kind: OutcomeSuccess, Proof: &proof})
}

// Dismiss resolves the checkout as cancelled by the customer.
func (c *Checkout) Dismiss() {
	c.deliver(Outcome{Kind: OutcomeDismiss})
}

// Fail resolves the checkout with a gateway error.
func (c *Checkout) Fail(reason string) {
	c.deliver(Outcome{Kind: OutcomeError, Reason: reason})
}

func (c *Checkout) deliver(out Outcome) {
	c.resolve.Do(func() {
		c.outcome <- out
	})
}
