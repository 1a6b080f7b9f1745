package catalog

import (
	"errors"
	"time"
)

// Product is a catalog product record. The catalog service owns this data;
// the storefront only reads it.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// ProductPage is one page of products plus the total count, as returned by
// the paginated, search and category endpoints.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

var (
	// ErrProductNotFound is returned when the catalog has no product with
	// the requested identifier.
	ErrProductNotFound = errors.New("catalog: product not found")

	// ErrUnavailable is returned for transient failures: the catalog could
	// not be reached or answered with an unexpected status or payload.
	ErrUnavailable = errors.New("catalog: service unavailable")
)

// Config holds catalog client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("catalog: base URL is required")
	}
	return nil
}
