package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mkim-dev/storefront-backend/internal/app/model"
	"github.com/mkim-dev/storefront-backend/internal/app/repository"
	"github.com/mkim-dev/storefront-backend/internal/stockgate"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrCatalogUnavailable    = errors.New("catalog unavailable")
	ErrOutOfStock            = errors.New("product out of stock")
	ErrStockCheckUnavailable = errors.New("stock check unavailable")
)

// CatalogReader is the read-only view of the external catalog that the
// services consume.
type CatalogReader interface {
	Products(ctx context.Context, limit, skip int) (*catalog.ProductPage, error)
	ProductByID(ctx context.Context, id int) (*catalog.Product, error)
	Search(ctx context.Context, q string) (*catalog.ProductPage, error)
	ProductsByCategory(ctx context.Context, category string) (*catalog.ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
}

type CartService interface {
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
	AddToCart(ctx context.Context, cartID string, productID int) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, cartID string, productID, quantity int) (*model.Cart, error)
	RemoveFromCart(ctx context.Context, cartID string, productID int) (*model.Cart, error)
	ClearCart(ctx context.Context, cartID string) (*model.Cart, error)
	IsInCart(ctx context.Context, cartID string, productID int) (bool, error)
}

// cartService owns every cart. A cart is restored from its persisted
// snapshot the first time it is touched, held in memory as the authority
// from then on, and persisted after every mutation. A per-cart lock makes
// each mutation atomic from the caller's perspective; the aggregates a
// caller observes are always the ones recomputed by that mutation.
type cartService struct {
	snapshots repository.CartSnapshotRepository
	catalog   CatalogReader
	gate      stockgate.Authorizer

	mu    sync.Mutex
	carts map[string]*cartEntry
}

type cartEntry struct {
	mu   sync.Mutex
	cart *model.Cart
}

func NewCartService(
	snapshots repository.CartSnapshotRepository,
	catalogReader CatalogReader,
	gate stockgate.Authorizer,
) CartService {
	return &cartService{
		snapshots: snapshots,
		catalog:   catalogReader,
		gate:      gate,
		carts:     make(map[string]*cartEntry),
	}
}

// entry returns the tracked entry for a cart, creating it if needed. The
// entry's cart is loaded lazily under the entry lock.
func (s *cartService) entry(cartID string) *cartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[cartID]
	if !ok {
		e = &cartEntry{}
		s.carts[cartID] = e
	}
	return e
}

// load populates the entry from the persisted snapshot, or with a fresh
// empty cart when no usable snapshot exists. Caller holds e.mu.
func (s *cartService) load(ctx context.Context, cartID string, e *cartEntry) error {
	if e.cart != nil {
		return nil
	}

	cart, err := s.snapshots.Load(ctx, cartID)
	if err != nil {
		return err
	}
	if cart == nil {
		cart = model.NewCart(cartID)
	} else {
		logger.Debug("Cart restored from snapshot", map[string]interface{}{
			"cart_id":     cartID,
			"total_items": cart.TotalItems,
		})
	}
	e.cart = cart
	return nil
}

// persist saves the cart snapshot after a mutation. The in-memory cart
// stays authoritative, so a failed write is logged and retried implicitly
// by the next mutation instead of failing the operation.
func (s *cartService) persist(ctx context.Context, cart *model.Cart) {
	if err := s.snapshots.Save(ctx, cart); err != nil {
		logger.Error("Failed to persist cart snapshot", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
	}
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return nil, err
	}
	return snapshotOf(e.cart), nil
}

func (s *cartService) AddToCart(ctx context.Context, cartID string, productID int) (*model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	product, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"cart_id":    cartID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for cart", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	outcome, err := s.gate.Authorize(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case stockgate.OutcomeRejectedOutOfStock:
		return nil, ErrOutOfStock
	case stockgate.OutcomeRejectedUnavailable:
		return nil, ErrStockCheckUnavailable
	}

	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return nil, err
	}
	e.cart.AddItem(product)
	s.persist(ctx, e.cart)

	logger.Info("Item added to cart", map[string]interface{}{
		"cart_id":     cartID,
		"product_id":  productID,
		"total_items": e.cart.TotalItems,
	})
	return snapshotOf(e.cart), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, productID, quantity int) (*model.Cart, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return nil, err
	}
	e.cart.UpdateQuantity(productID, quantity)
	s.persist(ctx, e.cart)
	return snapshotOf(e.cart), nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, cartID string, productID int) (*model.Cart, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return nil, err
	}
	e.cart.RemoveItem(productID)
	s.persist(ctx, e.cart)
	return snapshotOf(e.cart), nil
}

func (s *cartService) ClearCart(ctx context.Context, cartID string) (*model.Cart, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"cart_id": cartID,
	})

	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return nil, err
	}
	e.cart.Clear()
	s.persist(ctx, e.cart)
	return snapshotOf(e.cart), nil
}

func (s *cartService) IsInCart(ctx context.Context, cartID string, productID int) (bool, error) {
	e := s.entry(cartID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.load(ctx, cartID, e); err != nil {
		return false, err
	}
	return e.cart.Contains(productID), nil
}

// snapshotOf returns a copy safe to hand to callers after the entry lock is
// released.
func snapshotOf(cart *model.Cart) *model.Cart {
	out := *cart
	out.Items = make([]model.LineItem, len(cart.Items))
	copy(out.Items, cart.Items)
	return &out
}
