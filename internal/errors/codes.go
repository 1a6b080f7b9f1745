package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The storefront UI maps these codes to user-facing messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric or missing identifier
	ValidationRequired     = "VALIDATION_REQUIRED"      // required parameter missing

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND" // no such product in the catalog

	// ==================== Catalog (CATALOG_) ====================
	CatalogUnavailable = "CATALOG_UNAVAILABLE" // catalog unreachable or answered garbage

	// ==================== Cart (CART_) ====================
	CartOperationFailed = "CART_OPERATION_FAILED" // cart state could not be read or written

	// ==================== Stock (STOCK_) ====================
	StockOutOfStock       = "STOCK_OUT_OF_STOCK"       // gate rejected: product not in stock
	StockCheckUnavailable = "STOCK_CHECK_UNAVAILABLE"  // gate could not reach the authority (fail-closed)

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
