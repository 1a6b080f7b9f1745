package stockgate

// Event names and payloads exchanged with the stock authority over the
// websocket channel. Outbound check-stock carries a product identifier;
// inbound stock-status answers for that same identifier.

const (
	MessageTypeCheckStock  = "check-stock"
	MessageTypeStockStatus = "stock-status"
)

type CheckStockMessage struct {
	Type      string `json:"type"`
	ProductID int    `json:"productId"`
}

type StockStatusMessage struct {
	Type      string `json:"type"`
	ProductID int    `json:"productId"`
	InStock   bool   `json:"inStock"`
}
