package stockgate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChecker scripts the authority's behavior per product.
type fakeChecker struct {
	connected bool
	inStock   map[int]bool
	err       error
	block     bool // never answer; wait for the caller's deadline
}

func (f *fakeChecker) CheckStock(ctx context.Context, productID int) (bool, error) {
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if f.err != nil {
		return false, f.err
	}
	return f.inStock[productID], nil
}

func (f *fakeChecker) Connected() bool {
	return f.connected
}

func TestGate_InactiveAcceptsImmediately(t *testing.T) {
	gate := NewGate(Config{Enabled: false}, &fakeChecker{connected: false})

	outcome, err := gate.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestGate_NilCheckerAcceptsImmediately(t *testing.T) {
	gate := NewGate(Config{Enabled: true}, nil)

	outcome, err := gate.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestGate_InStockAccepts(t *testing.T) {
	checker := &fakeChecker{connected: true, inStock: map[int]bool{7: true}}
	gate := NewGate(Config{Enabled: true}, checker)

	outcome, err := gate.Authorize(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestGate_OutOfStockRejects(t *testing.T) {
	checker := &fakeChecker{connected: true, inStock: map[int]bool{7: false}}
	gate := NewGate(Config{Enabled: true}, checker)

	outcome, err := gate.Authorize(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejectedOutOfStock, outcome)
}

func TestGate_DisconnectedFailOpen(t *testing.T) {
	gate := NewGate(Config{Enabled: true}, &fakeChecker{connected: false})

	outcome, err := gate.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestGate_DisconnectedFailClosed(t *testing.T) {
	gate := NewGate(Config{Enabled: true, FailClosed: true}, &fakeChecker{connected: false})

	outcome, err := gate.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejectedUnavailable, outcome)
}

func TestGate_CheckErrorFailOpen(t *testing.T) {
	checker := &fakeChecker{connected: true, err: ErrNotConnected}
	gate := NewGate(Config{Enabled: true}, checker)

	outcome, err := gate.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
}

func TestGate_TimeoutTakesConfiguredFallback(t *testing.T) {
	checker := &fakeChecker{connected: true, block: true}

	open := NewGate(Config{Enabled: true, Timeout: 20 * time.Millisecond}, checker)
	outcome, err := open.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	closed := NewGate(Config{Enabled: true, FailClosed: true, Timeout: 20 * time.Millisecond}, checker)
	outcome, err = closed.Authorize(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejectedUnavailable, outcome)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "accepted", OutcomeAccepted.String())
	assert.Equal(t, "rejected_out_of_stock", OutcomeRejectedOutOfStock.String())
	assert.Equal(t, "rejected_unavailable", OutcomeRejectedUnavailable.String())
}
