package booking

import (
	"context"
	"math"
	"time"

	"asap/models"
	"asap/platform"
	"asap/services/payment"

	"go.uber.org/zap"
)

// GapFlagger records a reconciliation gap: a payment that moved money without
// producing a booking. Flagging only; resolution is out-of-band.
type GapFlagger interface {
	FlagGap(ctx context.Context, checkoutID string, proof models.PaymentProof, amount float64, reason string) error
}

// DefaultCheckoutService is the checkout saga controller. It owns every
// retry/abort decision; collaborator failures abort the current step and are
// never silently retried.
type DefaultCheckoutService struct {
	Platform  platform.Client
	Gateway   payment.Gateway
	Checkouts *payment.Registry // optional; lets the callback endpoint find the checkout
	Ledger    ProofLedger
	Results   ResultStore // optional; progress + terminal result for polling
	Gaps      GapFlagger  // optional
	Logger    *zap.Logger

	PaymentTimeout time.Duration
	Currency       string
}

func (s *DefaultCheckoutService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *DefaultCheckoutService) step(sm *sagaMachine, next SagaState) {
	if err := sm.to(next); err != nil {
		s.logger().DPanic("saga state machine violation", zap.Error(err))
	}
}

func (s *DefaultCheckoutService) save(ctx context.Context, checkoutID string, result *models.CheckoutResult) *models.CheckoutResult {
	if s.Results != nil {
		if err := s.Results.Save(ctx, checkoutID, result); err != nil {
			s.logger().Error("failed to store checkout result",
				zap.String("checkoutID", checkoutID), zap.Error(err))
		}
	}
	return result
}

// Submit runs one checkout saga from draft to a terminal state. A fresh
// checkout instance is opened per submission; nothing is shared across runs.
func (s *DefaultCheckoutService) Submit(ctx context.Context, checkoutID string, draft models.BookingDraft) *models.CheckoutResult {
	result, resume := s.Begin(ctx, checkoutID, draft)
	if resume == nil {
		return result
	}
	return resume(ctx)
}

// Begin runs the saga until the hosted checkout is ready to open: validation,
// the cash-on-delivery shortcut, gateway order creation and checkout
// registration. When resume is non-nil the returned result is the stored
// awaiting-payment progress carrying the gateway order, and resume must be
// called to drive the saga to its terminal state.
func (s *DefaultCheckoutService) Begin(ctx context.Context, checkoutID string, draft models.BookingDraft) (*models.CheckoutResult, Resume) {
	sm := newSagaMachine()
	log := s.logger().With(zap.String("checkoutID", checkoutID))

	s.step(sm, StateValidating)
	if missing := ValidateDraft(draft); len(missing) > 0 {
		log.Info("checkout rejected on validation", zap.Strings("missing", missing))
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:         models.StateValidationError,
			MissingFields: missing,
		}), nil
	}

	if draft.PaymentMethod == models.MethodCashOnDelivery {
		s.step(sm, StateIdle)
		return s.save(ctx, checkoutID, s.createBooking(ctx, sm, log, checkoutID, draft, nil)), nil
	}

	// Online payment: gateway order first. Failure here makes no booking.
	s.step(sm, StateAwaitingIntent)
	minor := int64(math.Round(draft.TotalAmount * 100))
	intent, err := s.Platform.CreatePaymentIntent(ctx, minor, s.Currency)
	if err != nil {
		log.Warn("gateway order creation failed", zap.Error(err))
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:  models.StateGatewayOrderError,
			Reason: err.Error(),
		}), nil
	}

	checkout, err := s.Gateway.NewCheckout(*intent, models.CheckoutPrefill{
		Name:  draft.Contact.Name,
		Email: draft.Contact.Email,
		Phone: draft.Contact.Phone,
	})
	if err != nil {
		log.Warn("hosted checkout unavailable", zap.Error(err))
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:  models.StateGatewayError,
			Reason: payment.ErrGatewayUnavailable.Error(),
		}), nil
	}
	if s.Checkouts != nil {
		s.Checkouts.Register(checkoutID, checkout)
	}

	s.step(sm, StateAwaitingGateway)
	progress := s.save(ctx, checkoutID, &models.CheckoutResult{
		State:  models.StateAwaitingPayment,
		Intent: intent,
	})
	return progress, func(ctx context.Context) *models.CheckoutResult {
		return s.await(ctx, sm, log, checkoutID, draft, checkout)
	}
}

// await suspends on the single-shot gateway callback and finishes the saga.
func (s *DefaultCheckoutService) await(ctx context.Context, sm *sagaMachine, log *zap.Logger, checkoutID string, draft models.BookingDraft, checkout *payment.Checkout) *models.CheckoutResult {
	if s.Checkouts != nil {
		defer s.Checkouts.Release(checkoutID)
	}

	if err := checkout.Open(ctx); err != nil {
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:  models.StateGatewayError,
			Reason: err.Error(),
		})
	}

	// The one cooperative suspension point: wait for the single-shot
	// gateway callback. Dismissal and caller cancellation are only
	// honored here; once verification starts the saga runs to the end.
	var out payment.Outcome
	select {
	case out = <-checkout.Outcome():
	case <-time.After(s.paymentTimeout()):
		log.Warn("gateway callback timed out")
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:  models.StateGatewayError,
			Reason: "gateway callback timed out",
		})
	case <-ctx.Done():
		log.Info("checkout abandoned while awaiting gateway callback")
		return s.save(ctx, checkoutID, &models.CheckoutResult{State: models.StateCancelled})
	}

	switch out.Kind {
	case payment.OutcomeDismiss:
		log.Info("customer dismissed hosted checkout")
		return s.save(ctx, checkoutID, &models.CheckoutResult{State: models.StateCancelled})
	case payment.OutcomeError:
		log.Warn("hosted checkout reported an error", zap.String("reason", out.Reason))
		return s.save(ctx, checkoutID, &models.CheckoutResult{
			State:  models.StateGatewayError,
			Reason: out.Reason,
		})
	}

	return s.save(ctx, checkoutID, s.complete(ctx, sm, log, checkoutID, draft, *out.Proof))
}

// complete runs verification and booking creation for a successful gateway
// callback. It is detached from caller cancellation: abandoning it could
// leave a payment with no corresponding booking.
func (s *DefaultCheckoutService) complete(ctx context.Context, sm *sagaMachine, log *zap.Logger, checkoutID string, draft models.BookingDraft, proof models.PaymentProof) *models.CheckoutResult {
	ctx = context.WithoutCancel(ctx)

	s.step(sm, StateVerifying)
	verified, err := s.Platform.VerifyPayment(ctx, proof)
	if err != nil {
		log.Error("payment verification errored", zap.Error(err))
		s.flagGap(ctx, checkoutID, proof, draft.TotalAmount, "verification errored: "+err.Error())
		return &models.CheckoutResult{State: models.StateVerificationFailed, Reason: err.Error()}
	}
	if !verified {
		log.Warn("payment proof failed verification",
			zap.String("gatewayPaymentId", proof.GatewayPaymentID))
		s.flagGap(ctx, checkoutID, proof, draft.TotalAmount, "gateway reported proof as unverified")
		return &models.CheckoutResult{State: models.StateVerificationFailed}
	}

	first, err := s.Ledger.FirstUse(ctx, proof.GatewayPaymentID)
	if err != nil {
		// Prefer missing a booking over risking a duplicate one.
		log.Error("proof ledger unavailable", zap.Error(err))
		s.flagGap(ctx, checkoutID, proof, draft.TotalAmount, "proof ledger unavailable: "+err.Error())
		return &models.CheckoutResult{State: models.StateVerificationFailed, Reason: "proof ledger unavailable"}
	}
	if !first {
		log.Warn("payment proof already consumed",
			zap.String("gatewayPaymentId", proof.GatewayPaymentID))
		return &models.CheckoutResult{State: models.StateVerificationFailed, Reason: "payment proof already consumed"}
	}

	return s.createBooking(ctx, sm, log, checkoutID, draft, &proof)
}

func (s *DefaultCheckoutService) createBooking(ctx context.Context, sm *sagaMachine, log *zap.Logger, checkoutID string, draft models.BookingDraft, proof *models.PaymentProof) *models.CheckoutResult {
	s.step(sm, StateCreatingBooking)

	paymentStatus := platform.PaymentStatusPending
	if proof != nil {
		paymentStatus = platform.PaymentStatusCompleted
	}
	booked, err := s.Platform.CreateBooking(ctx, draft, proof, paymentStatus)
	if err != nil {
		log.Error("booking creation failed", zap.Error(err))
		if proof != nil {
			s.flagGap(ctx, checkoutID, *proof, draft.TotalAmount, "verified payment but booking creation failed: "+err.Error())
		}
		return &models.CheckoutResult{State: models.StateBookingFailed, Reason: err.Error()}
	}

	s.step(sm, StateConfirmedTerminal)
	log.Info("booking confirmed",
		zap.String("bookingID", booked.ID),
		zap.String("paymentStatus", paymentStatus))
	return &models.CheckoutResult{State: models.StateConfirmed, Booking: booked}
}

func (s *DefaultCheckoutService) flagGap(ctx context.Context, checkoutID string, proof models.PaymentProof, amount float64, reason string) {
	s.logger().Error("payment reconciliation gap",
		zap.String("checkoutID", checkoutID),
		zap.String("gatewayPaymentId", proof.GatewayPaymentID),
		zap.String("gatewayOrderId", proof.GatewayOrderID),
		zap.Float64("amount", amount),
		zap.String("reason", reason))
	if s.Gaps == nil {
		return
	}
	if err := s.Gaps.FlagGap(ctx, checkoutID, proof, amount, reason); err != nil {
		s.logger().Error("failed to enqueue reconciliation flag", zap.Error(err))
	}
}

func (s *DefaultCheckoutService) paymentTimeout() time.Duration {
	if s.PaymentTimeout > 0 {
		return s.PaymentTimeout
	}
	return 15 * time.Minute
}
