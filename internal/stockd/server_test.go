package stockd

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mkim-dev/storefront-backend/internal/stockgate"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductFinder struct {
	products map[int]*catalog.Product
	err      error
}

func (f *fakeProductFinder) ProductByID(ctx context.Context, id int) (*catalog.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func dialServer(t *testing.T, finder ProductFinder) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/ws", NewServer(finder).HandleWS)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func check(t *testing.T, conn *websocket.Conn, productID int) stockgate.StockStatusMessage {
	t.Helper()

	require.NoError(t, conn.WriteJSON(stockgate.CheckStockMessage{
		Type:      stockgate.MessageTypeCheckStock,
		ProductID: productID,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var status stockgate.StockStatusMessage
	require.NoError(t, conn.ReadJSON(&status))
	return status
}

func TestServer_InStock(t *testing.T) {
	finder := &fakeProductFinder{products: map[int]*catalog.Product{
		1: {ID: 1, Stock: 5},
	}}
	conn := dialServer(t, finder)

	status := check(t, conn, 1)
	assert.Equal(t, stockgate.MessageTypeStockStatus, status.Type)
	assert.Equal(t, 1, status.ProductID)
	assert.True(t, status.InStock)
}

func TestServer_ZeroStock(t *testing.T) {
	finder := &fakeProductFinder{products: map[int]*catalog.Product{
		1: {ID: 1, Stock: 0},
	}}
	conn := dialServer(t, finder)

	status := check(t, conn, 1)
	assert.False(t, status.InStock)
}

func TestServer_CatalogFailureFailsClosed(t *testing.T) {
	conn := dialServer(t, &fakeProductFinder{err: errors.New("catalog down")})

	status := check(t, conn, 7)
	assert.Equal(t, 7, status.ProductID)
	assert.False(t, status.InStock)
}

func TestServer_UnknownProductFailsClosed(t *testing.T) {
	conn := dialServer(t, &fakeProductFinder{products: map[int]*catalog.Product{}})

	status := check(t, conn, 42)
	assert.False(t, status.InStock)
}

func TestServer_AnswersCarryRequestedID(t *testing.T) {
	finder := &fakeProductFinder{products: map[int]*catalog.Product{
		1: {ID: 1, Stock: 1},
		2: {ID: 2, Stock: 0},
	}}
	conn := dialServer(t, finder)

	ids := map[int]bool{}
	require.NoError(t, conn.WriteJSON(stockgate.CheckStockMessage{Type: stockgate.MessageTypeCheckStock, ProductID: 1}))
	require.NoError(t, conn.WriteJSON(stockgate.CheckStockMessage{Type: stockgate.MessageTypeCheckStock, ProductID: 2}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 2; i++ {
		var status stockgate.StockStatusMessage
		require.NoError(t, conn.ReadJSON(&status))
		ids[status.ProductID] = status.InStock
	}

	assert.Equal(t, map[int]bool{1: true, 2: false}, ids)
}
