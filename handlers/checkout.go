package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"asap/models"
	"asap/services/booking"
	"asap/services/cart"
	"asap/services/payment"
	"asap/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutHandler exposes the checkout saga over HTTP.
type CheckoutHandler struct {
	Saga      booking.CheckoutService
	Checkouts *payment.Registry
	Results   booking.ResultStore
	Logger    *zap.Logger

	// Base bounds detached sagas. Cancelling it resolves checkouts still
	// awaiting their gateway callback so Drain can return.
	Base context.Context

	inflight sync.WaitGroup
}

func NewCheckoutHandler(saga booking.CheckoutService, checkouts *payment.Registry, results booking.ResultStore, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Saga: saga, Checkouts: checkouts, Results: results, Logger: logger}
}

type startCheckoutInput struct {
	Contact       models.ContactInfo   `json:"contact"`
	Address       models.Address       `json:"address"`
	PreferredTime string               `json:"preferredTime"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Cart          models.CartSnapshot  `json:"cart"`
}

// StartCheckout begins a checkout saga. Cash-on-delivery resolves
// synchronously; online payments return a checkout ID the hosted UI reports
// back to, and the client polls for the terminal state.
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	var input startCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	draft := cart.Finalize(input.Cart, input.Contact, input.Address, input.PreferredTime, input.PaymentMethod)
	if missing := booking.ValidateDraft(draft); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "missing or malformed fields",
			"missingFields": missing,
		})
		return
	}

	checkoutID := uuid.New().String()

	if draft.PaymentMethod == models.MethodCashOnDelivery {
		result := h.Saga.Submit(c.Request.Context(), checkoutID, draft)
		c.JSON(http.StatusOK, gin.H{"checkoutId": checkoutID, "result": result})
		return
	}

	// Online payment: the gateway order is created before responding so the
	// hosted UI can open straight from this response. Only the callback wait
	// runs detached from the request; progress and the terminal result stay
	// available through GetCheckout.
	result, resume := h.Saga.Begin(c.Request.Context(), checkoutID, draft)
	if resume == nil {
		c.JSON(http.StatusOK, gin.H{"checkoutId": checkoutID, "result": result})
		return
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		resume(h.base())
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"checkoutId": checkoutID,
		"state":      result.State,
		"intent":     result.Intent,
	})
}

func (h *CheckoutHandler) base() context.Context {
	if h.Base != nil {
		return h.Base
	}
	return context.Background()
}

// Drain blocks until every detached checkout saga reaches a terminal state.
// Callers cancel the base context first so sagas still awaiting the gateway
// resolve as cancelled instead of running out their payment timeout.
func (h *CheckoutHandler) Drain() {
	h.inflight.Wait()
}

type gatewayCallbackInput struct {
	Event            string `json:"event"` // "success", "dismiss" or "error"
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewaySignature string `json:"gatewaySignature"`
	Reason           string `json:"reason"`
}

// GatewayCallback receives the single-shot outcome of the hosted payment UI
// and resolves the matching suspended saga. Late or repeated callbacks for a
// finished checkout are rejected.
func (h *CheckoutHandler) GatewayCallback(c *gin.Context) {
	checkoutID := c.Param("checkoutID")

	var input gatewayCallbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	checkout, ok := h.Checkouts.Lookup(checkoutID)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "unknown or completed checkout", checkoutID)
		return
	}

	switch input.Event {
	case "success":
		if input.GatewayPaymentID == "" || input.GatewayOrderID == "" || input.GatewaySignature == "" {
			utils.JSONError(c, http.StatusBadRequest, "incomplete payment proof", "gatewayPaymentId, gatewayOrderId and gatewaySignature are required")
			return
		}
		checkout.Succeed(models.PaymentProof{
			GatewayPaymentID: input.GatewayPaymentID,
			GatewayOrderID:   input.GatewayOrderID,
			GatewaySignature: input.GatewaySignature,
		})
	case "dismiss":
		checkout.Dismiss()
	case "error":
		checkout.Fail(input.Reason)
	default:
		utils.JSONError(c, http.StatusBadRequest, "unknown callback event", input.Event)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// GetCheckout returns the stored progress or terminal result of a checkout.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	checkoutID := c.Param("checkoutID")

	result, err := h.Results.Load(c.Request.Context(), checkoutID)
	if err != nil {
		if errors.Is(err, booking.ErrResultNotFound) {
			utils.JSONError(c, http.StatusNotFound, "checkout not found", checkoutID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load checkout result", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkoutId": checkoutID, "result": result})
}
