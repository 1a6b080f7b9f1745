package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkim-dev/storefront-backend/internal/app/repository"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

type ProductService interface {
	ListProducts(ctx context.Context, limit, skip int) (*catalog.ProductPage, error)
	GetProductByID(ctx context.Context, id int) (*catalog.Product, error)
	SearchProducts(ctx context.Context, q string) (*catalog.ProductPage, error)
	ListByCategory(ctx context.Context, category string) (*catalog.ProductPage, error)
	ListCategories(ctx context.Context) ([]string, error)
	RefreshCategoryCache(ctx context.Context) error
}

// productService proxies catalog reads. The category list is served from a
// cache when one is configured; everything else goes straight to the
// catalog.
type productService struct {
	catalog    CatalogReader
	categories repository.CategoryCache // may be nil
}

func NewProductService(catalogReader CatalogReader, categories repository.CategoryCache) ProductService {
	return &productService{
		catalog:    catalogReader,
		categories: categories,
	}
}

func (s *productService) ListProducts(ctx context.Context, limit, skip int) (*catalog.ProductPage, error) {
	page, err := s.catalog.Products(ctx, limit, skip)
	if err != nil {
		return nil, mapCatalogErr(err)
	}

	logger.Debug("Products fetched from catalog", map[string]interface{}{
		"limit": limit,
		"skip":  skip,
		"count": len(page.Products),
		"total": page.Total,
	})
	return page, nil
}

func (s *productService) GetProductByID(ctx context.Context, id int) (*catalog.Product, error) {
	product, err := s.catalog.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			logger.Warn("Product not found in catalog", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, mapCatalogErr(err)
	}
	return product, nil
}

func (s *productService) SearchProducts(ctx context.Context, q string) (*catalog.ProductPage, error) {
	page, err := s.catalog.Search(ctx, q)
	if err != nil {
		return nil, mapCatalogErr(err)
	}

	logger.Debug("Product search completed", map[string]interface{}{
		"query": q,
		"total": page.Total,
	})
	return page, nil
}

func (s *productService) ListByCategory(ctx context.Context, category string) (*catalog.ProductPage, error) {
	page, err := s.catalog.ProductsByCategory(ctx, category)
	if err != nil {
		return nil, mapCatalogErr(err)
	}
	return page, nil
}

// ListCategories serves the category list from the cache when possible and
// falls back to a direct catalog read, rewarming the cache on the way out.
func (s *productService) ListCategories(ctx context.Context) ([]string, error) {
	if s.categories != nil {
		cached, err := s.categories.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn("Category cache read failed, falling back to catalog", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, mapCatalogErr(err)
	}

	if s.categories != nil {
		if err := s.categories.Set(ctx, categories); err != nil {
			logger.Warn("Failed to warm category cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return categories, nil
}

// RefreshCategoryCache fetches the category list from the catalog and
// rewrites the cache. Used by the scheduler and at startup.
func (s *productService) RefreshCategoryCache(ctx context.Context) error {
	if s.categories == nil {
		return nil
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return mapCatalogErr(err)
	}
	if err := s.categories.Set(ctx, categories); err != nil {
		return err
	}

	logger.Info("Category cache refreshed", map[string]interface{}{
		"count": len(categories),
	})
	return nil
}

func mapCatalogErr(err error) error {
	if errors.Is(err, catalog.ErrProductNotFound) {
		return ErrProductNotFound
	}
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}
