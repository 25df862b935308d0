package payment

import (
	"errors"
	"sync"

	"asap/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrGatewayUnavailable is returned when the gateway handle failed to
// initialize; online payment methods are blocked while cash-on-delivery
// remains available.
var ErrGatewayUnavailable = errors.New("gateway_unavailable")

// HandleConfig carries the hosted checkout credentials.
type HandleConfig struct {
	KeyID       string
	KeySecret   string
	CheckoutURL string
}

// Handle wraps the process-wide hosted checkout script/credentials. It is
// initialized at most once and read-only afterwards; it is passed explicitly
// to the gateway rather than read from ambient storage.
type Handle struct {
	cfg  HandleConfig
	once sync.Once
	err  error
}

// NewHandle builds an uninitialized handle. Initialization is lazy: the first
// checkout to need it triggers it.
func NewHandle(cfg HandleConfig) *Handle {
	return &Handle{cfg: cfg}
}

// Ready initializes the handle on first use and reports whether the hosted
// checkout can be opened.
func (h *Handle) Ready() error {
	h.once.Do(func() {
		if h.cfg.KeyID == "" || h.cfg.KeySecret == "" {
			h.err = ErrGatewayUnavailable
			return
		}
		if h.cfg.CheckoutURL == "" {
			h.err = ErrGatewayUnavailable
		}
	})
	return h.err
}

// CheckoutURL returns the hosted checkout base URL.
func (h *Handle) CheckoutURL() string { return h.cfg.CheckoutURL }

// KeyID returns the public gateway key for the hosted UI.
func (h *Handle) KeyID() string { return h.cfg.KeyID }

// Gateway creates single-use checkouts against the hosted payment UI.
type Gateway interface {
	NewCheckout(intent models.PaymentIntent, prefill models.CheckoutPrefill) (*Checkout, error)
}

// HostedGateway is the production gateway backed by a shared handle.
type HostedGateway struct {
	Handle *Handle
	Logger *zap.Logger
}

// NewCheckout returns a fresh checkout for one submission. Checkouts are
// never reused across submissions.
func (g *HostedGateway) NewCheckout(intent models.PaymentIntent, prefill models.CheckoutPrefill) (*Checkout, error) {
	if err := g.Handle.Ready(); err != nil {
		if g.Logger != nil {
			g.Logger.Warn("gateway handle unavailable", zap.Error(err))
		}
		return nil, err
	}
	return NewCheckout(uuid.New().String(), intent, prefill), nil
}
