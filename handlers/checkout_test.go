package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"asap/models"
	"asap/services/booking"
	"asap/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSaga struct {
	mu     sync.Mutex
	calls  int
	lastID string
	result *models.CheckoutResult

	beginResult *models.CheckoutResult // progress returned by Begin when resume is set
	resume      booking.Resume
}

func (s *stubSaga) Submit(_ context.Context, checkoutID string, _ models.BookingDraft) *models.CheckoutResult {
	s.record(checkoutID)
	return s.result
}

func (s *stubSaga) Begin(_ context.Context, checkoutID string, _ models.BookingDraft) (*models.CheckoutResult, booking.Resume) {
	s.record(checkoutID)
	if s.resume == nil {
		return s.result, nil
	}
	return s.beginResult, s.resume
}

func (s *stubSaga) record(checkoutID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastID = checkoutID
}

func (s *stubSaga) submitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func checkoutRouter(h *CheckoutHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/checkout", h.StartCheckout)
	r.POST("/api/checkout/:checkoutID/callback", h.GatewayCallback)
	r.GET("/api/checkout/:checkoutID", h.GetCheckout)
	return r
}

func checkoutBody(method string) string {
	return `{
		"contact": {"name": "Asha Rao", "phone": "9876543210", "email": "asha@example.com"},
		"address": {"flatBuilding": "12B", "landmark": "Mall", "street": "MG Road", "city": "Bengaluru", "postalCode": "560001"},
		"preferredTime": "2025-06-01T10:00",
		"paymentMethod": "` + method + `",
		"cart": {"lines": [{"serviceId": "svc-1", "name": "Cleaning", "unitPrice": 50, "quantity": 2}]}
	}`
}

func TestStartCheckout_CashOnDeliveryRespondsSynchronously(t *testing.T) {
	saga := &stubSaga{result: &models.CheckoutResult{State: models.StateConfirmed}}
	r := checkoutRouter(NewCheckoutHandler(saga, payment.NewRegistry(), booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody("cod")))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		CheckoutID string                `json:"checkoutId"`
		Result     models.CheckoutResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CheckoutID)
	assert.Equal(t, models.StateConfirmed, resp.Result.State)
	assert.Equal(t, 1, saga.submitted())
}

func TestStartCheckout_OnlineReturnsGatewayOrderInfo(t *testing.T) {
	resumed := make(chan struct{})
	saga := &stubSaga{
		beginResult: &models.CheckoutResult{
			State:  models.StateAwaitingPayment,
			Intent: &models.PaymentIntent{GatewayOrderID: "order_9", AmountMinorUnits: 10000, Currency: "INR"},
		},
		resume: func(context.Context) *models.CheckoutResult {
			close(resumed)
			return &models.CheckoutResult{State: models.StateConfirmed}
		},
	}
	r := checkoutRouter(NewCheckoutHandler(saga, payment.NewRegistry(), booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody("card")))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		CheckoutID string                `json:"checkoutId"`
		State      models.CheckoutState  `json:"state"`
		Intent     *models.PaymentIntent `json:"intent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CheckoutID)
	assert.Equal(t, models.StateAwaitingPayment, resp.State)

	// The hosted UI opens straight from this response.
	require.NotNil(t, resp.Intent)
	assert.Equal(t, "order_9", resp.Intent.GatewayOrderID)
	assert.Equal(t, int64(10000), resp.Intent.AmountMinorUnits)

	// The gateway order was created before responding; only the callback
	// wait runs detached.
	assert.Equal(t, 1, saga.submitted())
	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("detached callback wait never started")
	}
}

func TestStartCheckout_OnlineGatewayOrderFailureRespondsSynchronously(t *testing.T) {
	saga := &stubSaga{result: &models.CheckoutResult{State: models.StateGatewayOrderError, Reason: "order rejected"}}
	r := checkoutRouter(NewCheckoutHandler(saga, payment.NewRegistry(), booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody("card")))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Result models.CheckoutResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StateGatewayOrderError, resp.Result.State)
}

func TestDrain_WaitsForDetachedSagas(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	saga := &stubSaga{
		beginResult: &models.CheckoutResult{
			State:  models.StateAwaitingPayment,
			Intent: &models.PaymentIntent{GatewayOrderID: "order_9"},
		},
		resume: func(ctx context.Context) *models.CheckoutResult {
			<-ctx.Done()
			return &models.CheckoutResult{State: models.StateCancelled}
		},
	}
	h := NewCheckoutHandler(saga, payment.NewRegistry(), booking.NewMemoryResultStore(), nil)
	h.Base = base
	r := checkoutRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody("card"))))
	require.Equal(t, http.StatusAccepted, w.Code)

	drained := make(chan struct{})
	go func() {
		h.Drain()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("drain returned while a saga was still awaiting its callback")
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain did not return after the base context was cancelled")
	}
}

func TestStartCheckout_ValidationFailureNeverStartsSaga(t *testing.T) {
	saga := &stubSaga{}
	r := checkoutRouter(NewCheckoutHandler(saga, payment.NewRegistry(), booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"paymentMethod":"card"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		MissingFields []string `json:"missingFields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.MissingFields, "name")
	assert.Contains(t, resp.MissingFields, "lines")
	assert.Zero(t, saga.submitted())
}

func TestGatewayCallback_ResolvesRegisteredCheckout(t *testing.T) {
	registry := payment.NewRegistry()
	checkout := payment.NewCheckout("chk_1", models.PaymentIntent{}, models.CheckoutPrefill{})
	registry.Register("co-1", checkout)
	r := checkoutRouter(NewCheckoutHandler(&stubSaga{}, registry, booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/co-1/callback", strings.NewReader(
		`{"event":"success","gatewayPaymentId":"pay_1","gatewayOrderId":"order_1","gatewaySignature":"sig"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	out := <-checkout.Outcome()
	assert.Equal(t, payment.OutcomeSuccess, out.Kind)
	assert.Equal(t, "pay_1", out.Proof.GatewayPaymentID)
}

func TestGatewayCallback_SuccessRequiresFullProof(t *testing.T) {
	registry := payment.NewRegistry()
	checkout := payment.NewCheckout("chk_1", models.PaymentIntent{}, models.CheckoutPrefill{})
	registry.Register("co-1", checkout)
	r := checkoutRouter(NewCheckoutHandler(&stubSaga{}, registry, booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/co-1/callback", strings.NewReader(
		`{"event":"success","gatewayPaymentId":"pay_1"}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	select {
	case <-checkout.Outcome():
		t.Fatal("checkout must stay unresolved on an incomplete proof")
	default:
	}
}

func TestGatewayCallback_UnknownCheckout(t *testing.T) {
	r := checkoutRouter(NewCheckoutHandler(&stubSaga{}, payment.NewRegistry(), booking.NewMemoryResultStore(), nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/ghost/callback", strings.NewReader(`{"event":"dismiss"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCheckout(t *testing.T) {
	results := booking.NewMemoryResultStore()
	require.NoError(t, results.Save(context.Background(), "co-1", &models.CheckoutResult{State: models.StateAwaitingPayment}))
	r := checkoutRouter(NewCheckoutHandler(&stubSaga{}, payment.NewRegistry(), results, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/checkout/co-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/checkout/ghost", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
