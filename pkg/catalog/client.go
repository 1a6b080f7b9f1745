package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a read-only HTTP client for the external catalog service.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new catalog client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Products returns one page of the full catalog.
func (c *Client) Products(ctx context.Context, limit, skip int) (*ProductPage, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("skip", fmt.Sprintf("%d", skip))

	var page ProductPage
	if err := c.doGet(ctx, "/products?"+query.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProductByID returns a single product by its identifier.
func (c *Client) ProductByID(ctx context.Context, id int) (*Product, error) {
	var product Product
	if err := c.doGet(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Search returns products matching a free-text query, with a total count.
func (c *Client) Search(ctx context.Context, q string) (*ProductPage, error) {
	query := url.Values{}
	query.Set("q", q)

	var page ProductPage
	if err := c.doGet(ctx, "/products/search?"+query.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProductsByCategory returns all products in a category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) (*ProductPage, error) {
	var page ProductPage
	if err := c.doGet(ctx, "/products/category/"+url.PathEscape(category), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Categories returns the list of category names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.doGet(ctx, "/products/category-list", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// doGet performs a GET request against the catalog and decodes the JSON
// response into out. A 404 maps to ErrProductNotFound; every other failure
// maps to ErrUnavailable.
func (c *Client) doGet(ctx context.Context, path string, out interface{}) error {
	reqURL := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return nil
}
