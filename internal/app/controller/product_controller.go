package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkim-dev/storefront-backend/internal/app/service"
	"github.com/mkim-dev/storefront-backend/internal/errors"
	"github.com/mkim-dev/storefront-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListProducts returns a paginated product listing
// GET /api/v1/products?limit=20&skip=0
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := parsePositiveQuery(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	skip := parsePositiveQuery(c, "skip", 0)

	page, err := ctrl.productService.ListProducts(c.Request.Context(), limit, skip)
	if err != nil {
		ctrl.respondCatalogError(c, err, "Failed to fetch products")
		return
	}

	log.Debug("Products listed", map[string]interface{}{
		"limit": limit,
		"skip":  skip,
		"total": page.Total,
	})

	c.JSON(http.StatusOK, page)
}

// GetProduct returns a single product by its numeric ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
		})
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid product ID")
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondCatalogError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// SearchProducts searches the catalog by keyword
// GET /api/v1/products/search?q=phone
func (ctrl *ProductController) SearchProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	if query == "" {
		errors.BadRequest(c, errors.ValidationRequired, "Search query is required")
		return
	}

	page, err := ctrl.productService.SearchProducts(c.Request.Context(), query)
	if err != nil {
		ctrl.respondCatalogError(c, err, "Failed to search products")
		return
	}

	log.Debug("Products searched", map[string]interface{}{
		"query": query,
		"total": page.Total,
	})

	c.JSON(http.StatusOK, page)
}

// ListCategories returns all category slugs
// GET /api/v1/products/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories(c.Request.Context())
	if err != nil {
		ctrl.respondCatalogError(c, err, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// ListByCategory returns the products of one category
// GET /api/v1/products/category/:category
func (ctrl *ProductController) ListByCategory(c *gin.Context) {
	category := c.Param("category")

	page, err := ctrl.productService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		ctrl.respondCatalogError(c, err, "Failed to fetch category products")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (ctrl *ProductController) respondCatalogError(c *gin.Context, err error, message string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case stderrors.Is(err, service.ErrProductNotFound):
		errors.NotFound(c, errors.ProductNotFound, "Product not found")
	case stderrors.Is(err, service.ErrCatalogUnavailable):
		log.Error("Catalog unavailable", err)
		errors.BadGateway(c, errors.CatalogUnavailable, "Catalog is currently unavailable")
	default:
		log.Error(message, err)
		errors.InternalError(c, message)
	}
}

func parsePositiveQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
