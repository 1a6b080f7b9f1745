package stockd

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mkim-dev/storefront-backend/internal/stockgate"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024

	// Bound on one catalog lookup while answering a check.
	checkTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The storefront server is the only expected peer; it connects
	// server-to-server without an Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProductFinder looks up a single catalog product.
type ProductFinder interface {
	ProductByID(ctx context.Context, id int) (*catalog.Product, error)
}

// Server is the stock authority: for each check-stock event it queries the
// catalog for the product and answers stock-status with
// inStock = (stock > 0). Any failure reaching the catalog answers
// inStock = false; the authority fails closed.
type Server struct {
	products ProductFinder
}

func NewServer(products ProductFinder) *Server {
	return &Server{products: products}
}

// HandleWS upgrades the request and serves stock checks until the peer
// disconnects.
// GET /ws
func (s *Server) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Failed to upgrade stock check connection", err, map[string]interface{}{
			"remote": c.Request.RemoteAddr,
		})
		return
	}

	logger.Info("Stock check client connected", map[string]interface{}{
		"remote": conn.RemoteAddr().String(),
	})
	s.serveConn(conn)
}

func (s *Server) serveConn(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		logger.Info("Stock check client disconnected", map[string]interface{}{
			"remote": conn.RemoteAddr().String(),
		})
	}()

	conn.SetReadLimit(maxMessageSize)

	// Checks run concurrently; writes to the shared connection are
	// serialized.
	var writeMu sync.Mutex

	for {
		var msg stockgate.CheckStockMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Stock check read error", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		if msg.Type != stockgate.MessageTypeCheckStock {
			logger.Debug("Ignoring unexpected stock check message", map[string]interface{}{
				"type": msg.Type,
			})
			continue
		}

		go func(productID int) {
			inStock := s.checkStock(productID)

			writeMu.Lock()
			defer writeMu.Unlock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(stockgate.StockStatusMessage{
				Type:      stockgate.MessageTypeStockStatus,
				ProductID: productID,
				InStock:   inStock,
			}); err != nil {
				logger.Error("Failed to write stock status", err, map[string]interface{}{
					"product_id": productID,
				})
			}
		}(msg.ProductID)
	}
}

func (s *Server) checkStock(productID int) bool {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		logger.Warn("Stock check failed, answering out of stock", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return false
	}

	logger.Debug("Stock check answered", map[string]interface{}{
		"product_id": productID,
		"stock":      product.Stock,
	})
	return product.Stock > 0
}
