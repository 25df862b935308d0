package payment

import (
	"context"
	"sync"
	"testing"

	"asap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntent() models.PaymentIntent {
	return models.PaymentIntent{GatewayOrderID: "order_1", AmountMinorUnits: 12500, Currency: "INR"}
}

func TestCheckout_FirstResolutionWins(t *testing.T) {
	c := NewCheckout("chk_1", testIntent(), models.CheckoutPrefill{})

	c.Succeed(models.PaymentProof{GatewayPaymentID: "pay_1"})
	c.Dismiss()
	c.Fail("late error")

	out := <-c.Outcome()
	require.Equal(t, OutcomeSuccess, out.Kind)
	require.NotNil(t, out.Proof)
	assert.Equal(t, "pay_1", out.Proof.GatewayPaymentID)

	select {
	case extra := <-c.Outcome():
		t.Fatalf("unexpected second outcome %q", extra.Kind)
	default:
	}
}

func TestCheckout_ConcurrentResolutionsDeliverOnce(t *testing.T) {
	c := NewCheckout("chk_2", testIntent(), models.CheckoutPrefill{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				c.Dismiss()
			} else {
				c.Fail("gateway glitch")
			}
		}(i)
	}
	wg.Wait()

	<-c.Outcome()
	select {
	case <-c.Outcome():
		t.Fatal("outcome delivered more than once")
	default:
	}
}

func TestCheckout_OpenHonorsDeadContext(t *testing.T) {
	c := NewCheckout("chk_3", testIntent(), models.CheckoutPrefill{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.Open(ctx))
	assert.NoError(t, c.Open(context.Background()))
}

func TestHostedGateway_UnavailableWithoutCredentials(t *testing.T) {
	gw := &HostedGateway{Handle: NewHandle(HandleConfig{})}

	_, err := gw.NewCheckout(testIntent(), models.CheckoutPrefill{})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	// The handle result is sticky across calls.
	_, err = gw.NewCheckout(testIntent(), models.CheckoutPrefill{})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestHostedGateway_FreshCheckoutPerCall(t *testing.T) {
	gw := &HostedGateway{Handle: NewHandle(HandleConfig{
		KeyID:       "rzp_test_key",
		KeySecret:   "secret",
		CheckoutURL: "https://checkout.example.com/v1/checkout.js",
	})}

	first, err := gw.NewCheckout(testIntent(), models.CheckoutPrefill{Name: "Asha"})
	require.NoError(t, err)
	second, err := gw.NewCheckout(testIntent(), models.CheckoutPrefill{Name: "Asha"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Asha", first.Prefill.Name)
}

func TestRegistry_RegisterLookupRelease(t *testing.T) {
	r := NewRegistry()
	c := NewCheckout("chk_4", testIntent(), models.CheckoutPrefill{})

	_, ok := r.Lookup("co-1")
	assert.False(t, ok)

	r.Register("co-1", c)
	got, ok := r.Lookup("co-1")
	require.True(t, ok)
	assert.Same(t, c, got)

	r.Release("co-1")
	_, ok = r.Lookup("co-1")
	assert.False(t, ok)
}
