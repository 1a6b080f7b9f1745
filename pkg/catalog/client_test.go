package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestProductsPassesPagination(t *testing.T) {
	var gotLimit, gotSkip string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotSkip = r.URL.Query().Get("skip")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":1,"title":"Phone","price":549,"stock":94}],"total":194,"skip":10,"limit":5}`))
	})

	page, err := client.Products(context.Background(), 5, 10)
	require.NoError(t, err)

	assert.Equal(t, "5", gotLimit)
	assert.Equal(t, "10", gotSkip)
	assert.Equal(t, 194, page.Total)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Phone", page.Products[0].Title)
}

func TestProductByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/7", r.URL.Path)
		w.Write([]byte(`{"id":7,"title":"Widget","price":19.99,"discountPercentage":12.5,"stock":3}`))
	})

	product, err := client.ProductByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 7, product.ID)
	assert.Equal(t, 12.5, product.DiscountPercentage)
	assert.Equal(t, 3, product.Stock)
}

func TestProductByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.ProductByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSearchEncodesQuery(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"products":[],"total":0,"skip":0,"limit":0}`))
	})

	_, err := client.Search(context.Background(), "red & blue")
	require.NoError(t, err)
	assert.Equal(t, "red & blue", gotQuery)
}

func TestProductsByCategory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/category/home-decoration", r.URL.Path)
		w.Write([]byte(`{"products":[{"id":30,"title":"Vase"}],"total":1,"skip":0,"limit":1}`))
	})

	page, err := client.ProductsByCategory(context.Background(), "home-decoration")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/category-list", r.URL.Path)
		w.Write([]byte(`["beauty","fragrances","furniture"]`))
	})

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "fragrances", "furniture"}, categories)
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Products(context.Background(), 20, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMalformedResponseMapsToUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": [`))
	})

	_, err := client.Products(context.Background(), 20, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnreachableServerMapsToUnavailable(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.ProductByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}
