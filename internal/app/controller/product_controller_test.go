package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkim-dev/storefront-backend/internal/app/service"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
)

type fakeProductService struct {
	page       *catalog.ProductPage
	product    *catalog.Product
	categories []string
	err        error
	lastLimit  int
	lastSkip   int
	lastQuery  string
	lastCat    string
}

func (f *fakeProductService) ListProducts(ctx context.Context, limit, skip int) (*catalog.ProductPage, error) {
	f.lastLimit = limit
	f.lastSkip = skip
	return f.page, f.err
}

func (f *fakeProductService) GetProductByID(ctx context.Context, id int) (*catalog.Product, error) {
	return f.product, f.err
}

func (f *fakeProductService) SearchProducts(ctx context.Context, q string) (*catalog.ProductPage, error) {
	f.lastQuery = q
	return f.page, f.err
}

func (f *fakeProductService) ListByCategory(ctx context.Context, category string) (*catalog.ProductPage, error) {
	f.lastCat = category
	return f.page, f.err
}

func (f *fakeProductService) ListCategories(ctx context.Context) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeProductService) RefreshCategoryCache(ctx context.Context) error {
	return f.err
}

func setupProductRouter(svc service.ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewProductController(svc)

	r := gin.New()
	products := r.Group("/api/v1/products")
	{
		products.GET("", ctrl.ListProducts)
		products.GET("/search", ctrl.SearchProducts)
		products.GET("/categories", ctrl.ListCategories)
		products.GET("/category/:category", ctrl.ListByCategory)
		products.GET("/:id", ctrl.GetProduct)
	}
	return r
}

func samplePage() *catalog.ProductPage {
	return &catalog.ProductPage{
		Products: []catalog.Product{{ID: 1, Title: "Sample", Price: 9.99, Stock: 5}},
		Total:    1,
		Skip:     0,
		Limit:    20,
	}
}

func TestListProductsDefaults(t *testing.T) {
	svc := &fakeProductService{page: samplePage()}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, svc.lastLimit)
	assert.Equal(t, 0, svc.lastSkip)
}

func TestListProductsPagination(t *testing.T) {
	svc := &fakeProductService{page: samplePage()}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products?limit=5&skip=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.lastLimit)
	assert.Equal(t, 10, svc.lastSkip)
}

func TestListProductsClampsLimit(t *testing.T) {
	svc := &fakeProductService{page: samplePage()}
	r := setupProductRouter(svc)

	performJSON(t, r, http.MethodGet, "/api/v1/products?limit=9999", nil)

	assert.Equal(t, 100, svc.lastLimit)
}

func TestListProductsCatalogDown(t *testing.T) {
	r := setupProductRouter(&fakeProductService{err: service.ErrCatalogUnavailable})

	w := performJSON(t, r, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "CATALOG_UNAVAILABLE")
}

func TestGetProduct(t *testing.T) {
	svc := &fakeProductService{product: &catalog.Product{ID: 3, Title: "Widget"}}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/3", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Product catalog.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Product.ID)
}

func TestGetProductNotFound(t *testing.T) {
	r := setupProductRouter(&fakeProductService{err: service.ErrProductNotFound})

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PRODUCT_NOT_FOUND")
}

func TestGetProductInvalidID(t *testing.T) {
	r := setupProductRouter(&fakeProductService{})

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_INVALID_ID")
}

func TestSearchProducts(t *testing.T) {
	svc := &fakeProductService{page: samplePage()}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/search?q=phone", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "phone", svc.lastQuery)
}

func TestSearchProductsRequiresQuery(t *testing.T) {
	r := setupProductRouter(&fakeProductService{})

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/search", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_REQUIRED")
}

func TestListCategories(t *testing.T) {
	svc := &fakeProductService{categories: []string{"beauty", "furniture"}}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/categories", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"beauty", "furniture"}, resp.Categories)
}

func TestListByCategory(t *testing.T) {
	svc := &fakeProductService{page: samplePage()}
	r := setupProductRouter(svc)

	w := performJSON(t, r, http.MethodGet, "/api/v1/products/category/beauty", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "beauty", svc.lastCat)
}
