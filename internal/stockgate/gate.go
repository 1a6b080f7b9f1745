package stockgate

import (
	"context"
	"errors"
	"time"

	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

// Outcome is the terminal result of one add-to-cart authorization request.
type Outcome int

const (
	// OutcomeAccepted authorizes the add.
	OutcomeAccepted Outcome = iota
	// OutcomeRejectedOutOfStock means the authority answered out-of-stock.
	OutcomeRejectedOutOfStock
	// OutcomeRejectedUnavailable means the check could not be completed and
	// the gate is configured fail-closed.
	OutcomeRejectedUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejectedOutOfStock:
		return "rejected_out_of_stock"
	case OutcomeRejectedUnavailable:
		return "rejected_unavailable"
	default:
		return "unknown"
	}
}

// Authorizer decides whether a single add-to-cart request may proceed.
type Authorizer interface {
	Authorize(ctx context.Context, productID int) (Outcome, error)
}

// Checker performs one stock-check round trip against the external
// authority.
type Checker interface {
	CheckStock(ctx context.Context, productID int) (bool, error)
	Connected() bool
}

// ErrNotConnected is returned by a Checker when the channel to the
// authority is not established.
var ErrNotConnected = errors.New("stockgate: channel not connected")

// Config holds stock gate configuration. Timeout bounds the wait on the
// authority's answer so a request can never stay pending indefinitely.
type Config struct {
	Enabled    bool
	FailClosed bool
	Timeout    time.Duration
}

const defaultTimeout = 5 * time.Second

// Gate sits in front of the cart store's add-item operation. Each request
// runs an independent state machine: idle, then awaiting the authority's
// response, then accepted or rejected. When the gate is inactive every
// request is accepted immediately, treating the product as available.
type Gate struct {
	cfg     Config
	checker Checker
}

func NewGate(cfg Config, checker Checker) *Gate {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Gate{cfg: cfg, checker: checker}
}

func (g *Gate) Authorize(ctx context.Context, productID int) (Outcome, error) {
	if !g.cfg.Enabled || g.checker == nil {
		return OutcomeAccepted, nil
	}

	if !g.checker.Connected() {
		return g.fallback(productID, "channel not connected"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	inStock, err := g.checker.CheckStock(ctx, productID)
	if err != nil {
		reason := "stock check failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "stock check timed out"
		}
		logger.Warn("Stock check did not complete", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return g.fallback(productID, reason), nil
	}

	if !inStock {
		logger.Info("Add to cart rejected: product out of stock", map[string]interface{}{
			"product_id": productID,
		})
		return OutcomeRejectedOutOfStock, nil
	}
	return OutcomeAccepted, nil
}

// fallback resolves a request the authority could not answer. Fail-open
// accepts, matching the storefront's observed behavior when the socket was
// down; fail-closed rejects with a distinct outcome so callers can tell it
// apart from out-of-stock.
func (g *Gate) fallback(productID int, reason string) Outcome {
	if g.cfg.FailClosed {
		logger.Warn("Stock gate failing closed", map[string]interface{}{
			"product_id": productID,
			"reason":     reason,
		})
		return OutcomeRejectedUnavailable
	}
	logger.Debug("Stock gate failing open", map[string]interface{}{
		"product_id": productID,
		"reason":     reason,
	})
	return OutcomeAccepted
}
