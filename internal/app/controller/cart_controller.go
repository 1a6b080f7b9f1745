package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkim-dev/storefront-backend/internal/app/service"
	"github.com/mkim-dev/storefront-backend/internal/errors"
	"github.com/mkim-dev/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddItemRequest struct {
	ProductID int `json:"product_id" binding:"required,gt=0"`
}

// Quantity is a pointer so an explicit zero reaches the service, where it
// behaves as a removal.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CreateCart mints a new cart identifier
// POST /api/v1/carts
func (ctrl *CartController) CreateCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cartID := uuid.NewString()
	log.Info("Cart created", map[string]interface{}{
		"cart_id": cartID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"cart_id": cartID,
	})
}

// GetCart returns a cart with its derived totals
// GET /api/v1/carts/:id
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), cartID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// AddItem adds one unit of a product, subject to the stock gate
// POST /api/v1/carts/:id/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"cart_id": cartID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	cart, err := ctrl.cartService.AddToCart(c.Request.Context(), cartID, req.ProductID)
	if err != nil {
		ctrl.respondAddError(c, cartID, req.ProductID, err)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"cart_id":     cartID,
		"product_id":  req.ProductID,
		"total_items": cart.TotalItems,
	})

	c.JSON(http.StatusCreated, gin.H{
		"cart": cart,
	})
}

func (ctrl *CartController) respondAddError(c *gin.Context, cartID string, productID int, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case stderrors.Is(err, service.ErrProductNotFound):
		log.Warn("Product not found for cart", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.NotFound(c, errors.ProductNotFound, "Product not found")
	case stderrors.Is(err, service.ErrOutOfStock):
		log.Info("Add to cart rejected: out of stock", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.Conflict(c, errors.StockOutOfStock, "Product is out of stock")
	case stderrors.Is(err, service.ErrStockCheckUnavailable):
		log.Warn("Add to cart rejected: stock check unavailable", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.ServiceUnavailable(c, errors.StockCheckUnavailable, "Stock check is currently unavailable")
	case stderrors.Is(err, service.ErrCatalogUnavailable):
		log.Error("Catalog unavailable during add to cart", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.BadGateway(c, errors.CatalogUnavailable, "Catalog is currently unavailable")
	default:
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to add item to cart")
	}
}

// UpdateItem sets a line item's quantity; zero or less removes it
// PUT /api/v1/carts/:id/items/:productId
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"error":      err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), cartID, productID, *req.Quantity)
	if err != nil {
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to update cart item")
		return
	}

	log.Info("Cart item updated", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   *req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// RemoveItem removes a line item; removing an absent item succeeds
// DELETE /api/v1/carts/:id/items/:productId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveFromCart(c.Request.Context(), cartID, productID)
	if err != nil {
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to remove cart item")
		return
	}

	log.Info("Cart item removed", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// GetItem reports whether a product is in the cart
// GET /api/v1/carts/:id/items/:productId
func (ctrl *CartController) GetItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	inCart, err := ctrl.cartService.IsInCart(c.Request.Context(), cartID, productID)
	if err != nil {
		log.Error("Failed to check cart membership", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to check cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"in_cart":    inCart,
	})
}

// ClearCart empties a cart
// DELETE /api/v1/carts/:id
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("id")

	cart, err := ctrl.cartService.ClearCart(c.Request.Context(), cartID)
	if err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"cart_id": cartID,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.CartOperationFailed, "Failed to clear cart")
		return
	}

	log.Info("Cart cleared", map[string]interface{}{
		"cart_id": cartID,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

func parseProductID(c *gin.Context) (int, bool) {
	idStr := c.Param("productId")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
		})
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid product ID")
		return 0, false
	}
	return id, true
}
