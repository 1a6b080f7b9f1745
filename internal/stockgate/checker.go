package stockgate

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	defaultRedialInterval = 3 * time.Second
)

// WSChecker is a Checker backed by a single process-wide websocket
// connection to the stock authority. The connection is established once and
// reused by every request; after a disconnect all in-flight requests fail
// with ErrNotConnected and the channel is redialed in the background.
//
// Responses are correlated to outstanding requests by product identifier:
// a stock-status for product B can never resolve a request for product A.
// Requests for the same product are resolved in FIFO order, one per
// response. A response with no matching waiter (the requester timed out, or
// the authority answered twice) is dropped.
type WSChecker struct {
	url            string
	dialer         *websocket.Dialer
	redialInterval time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	pending   map[int][]chan bool

	// writeMu serializes writes to the shared connection.
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

func NewWSChecker(url string) *WSChecker {
	return &WSChecker{
		url:            url,
		dialer:         websocket.DefaultDialer,
		redialInterval: defaultRedialInterval,
		pending:        make(map[int][]chan bool),
		done:           make(chan struct{}),
	}
}

// Run dials the authority and keeps the connection alive until Close is
// called, redialing after each disconnect. Call it in its own goroutine.
func (c *WSChecker) Run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			logger.Warn("Failed to connect to stock authority", map[string]interface{}{
				"url":   c.url,
				"error": err.Error(),
			})
			if !c.sleep() {
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		c.mu.Unlock()
		logger.Info("Connected to stock authority", map[string]interface{}{
			"url": c.url,
		})

		c.readLoop(conn)
		c.teardown(conn)

		if !c.sleep() {
			return
		}
	}
}

// Close shuts the checker down. Pending requests fail with ErrNotConnected.
func (c *WSChecker) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}

// Connected reports whether the channel to the authority is established.
func (c *WSChecker) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// CheckStock sends one check-stock request and waits for the matching
// stock-status response, the context deadline, or a disconnect, whichever
// comes first. On timeout the waiter is deregistered first, so a late
// response is dropped instead of being applied to a finished request.
func (c *WSChecker) CheckStock(ctx context.Context, productID int) (bool, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return false, ErrNotConnected
	}
	ch := make(chan bool, 1)
	c.pending[productID] = append(c.pending[productID], ch)
	conn := c.conn
	c.mu.Unlock()

	c.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(CheckStockMessage{
		Type:      MessageTypeCheckStock,
		ProductID: productID,
	})
	c.writeMu.Unlock()
	if err != nil {
		c.removeWaiter(productID, ch)
		logger.Error("Failed to send stock check request", err, map[string]interface{}{
			"product_id": productID,
		})
		return false, ErrNotConnected
	}

	select {
	case inStock, ok := <-ch:
		if !ok {
			// Channel dropped mid-flight.
			return false, ErrNotConnected
		}
		return inStock, nil
	case <-ctx.Done():
		c.removeWaiter(productID, ch)
		return false, ctx.Err()
	}
}

func (c *WSChecker) readLoop(conn *websocket.Conn) {
	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(conn, stopPing)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg StockStatusMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Stock authority connection lost", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		if msg.Type != MessageTypeStockStatus {
			logger.Debug("Ignoring unexpected message from stock authority", map[string]interface{}{
				"type": msg.Type,
			})
			continue
		}
		c.dispatch(msg)
	}
}

func (c *WSChecker) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// dispatch resolves the oldest waiter for the answered product. Unmatched
// responses are dropped.
func (c *WSChecker) dispatch(msg StockStatusMessage) {
	c.mu.Lock()
	waiters := c.pending[msg.ProductID]
	if len(waiters) == 0 {
		c.mu.Unlock()
		logger.Debug("Dropping stock-status with no outstanding request", map[string]interface{}{
			"product_id": msg.ProductID,
			"in_stock":   msg.InStock,
		})
		return
	}
	ch := waiters[0]
	if len(waiters) == 1 {
		delete(c.pending, msg.ProductID)
	} else {
		c.pending[msg.ProductID] = waiters[1:]
	}
	c.mu.Unlock()

	ch <- msg.InStock
}

// removeWaiter deregisters a waiter that gave up, so a late response for
// its product cannot be delivered to it.
func (c *WSChecker) removeWaiter(productID int, ch chan bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	waiters := c.pending[productID]
	remaining := waiters[:0]
	for _, w := range waiters {
		if w != ch {
			remaining = append(remaining, w)
		}
	}
	if len(remaining) == 0 {
		delete(c.pending, productID)
	} else {
		c.pending[productID] = remaining
	}
}

// teardown marks the channel down and fails every in-flight request.
func (c *WSChecker) teardown(conn *websocket.Conn) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.connected = false
	}
	failed := c.pending
	c.pending = make(map[int][]chan bool)
	c.mu.Unlock()

	for _, waiters := range failed {
		for _, ch := range waiters {
			close(ch)
		}
	}
}

func (c *WSChecker) sleep() bool {
	select {
	case <-time.After(c.redialInterval):
		return true
	case <-c.done:
		return false
	}
}
