package handlers

import (
	"errors"
	"net/http"

	"asap/models"
	"asap/platform"
	"asap/services/booking"
	"asap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperatorHandler exposes the booking lifecycle console.
type OperatorHandler struct {
	Lifecycle booking.LifecycleService
	Logger    *zap.Logger
}

func NewOperatorHandler(lifecycle booking.LifecycleService, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{Lifecycle: lifecycle, Logger: logger}
}

// bookingView decorates a booking with its cancellation-aware display label.
type bookingView struct {
	models.Booking
	Label string `json:"label"`
}

func viewOf(b models.Booking) bookingView {
	return bookingView{Booking: b, Label: booking.EffectiveLabel(b)}
}

// ListBookings returns all bookings visible under the optional customer scope.
func (h *OperatorHandler) ListBookings(c *gin.Context) {
	scope := platform.ListScope{Customer: c.Query("customer")}

	bookings, err := h.Lifecycle.List(c.Request.Context(), scope)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to fetch bookings", err.Error())
		return
	}

	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, viewOf(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// AdvanceBooking moves a booking forward along the lifecycle path.
func (h *OperatorHandler) AdvanceBooking(c *gin.Context) {
	var input struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	updated, err := h.Lifecycle.Advance(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": viewOf(*updated)})
}

// CancelBooking flags a booking as cancelled without altering its status.
func (h *OperatorHandler) CancelBooking(c *gin.Context) {
	updated, err := h.Lifecycle.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": viewOf(*updated)})
}

// AttachReview stores a review on a completed booking.
func (h *OperatorHandler) AttachReview(c *gin.Context) {
	var input struct {
		Review string `json:"review"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Review == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "review text is required")
		return
	}

	updated, err := h.Lifecycle.AttachReview(c.Request.Context(), c.Param("id"), input.Review)
	if err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": viewOf(*updated)})
}

func (h *OperatorHandler) respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid transition", err.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
	default:
		utils.JSONError(c, http.StatusBadGateway, "booking update failed", err.Error())
	}
}
