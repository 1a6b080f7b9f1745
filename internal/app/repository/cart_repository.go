package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkim-dev/storefront-backend/internal/app/model"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// CartSnapshotRepository persists the full cart collection as a single
// key-value snapshot per cart. Load returns (nil, nil) when no usable
// snapshot exists: an unparseable snapshot is discarded with a warning, not
// surfaced as an error, so a corrupt value can never take the cart down.
type CartSnapshotRepository interface {
	Load(ctx context.Context, cartID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type cartSnapshotRepository struct {
	client *redis.Client
}

func NewCartSnapshotRepository(client *redis.Client) CartSnapshotRepository {
	return &cartSnapshotRepository{client: client}
}

func cartKey(cartID string) string {
	return cartKeyPrefix + cartID
}

func (r *cartSnapshotRepository) Load(ctx context.Context, cartID string) (*model.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cart snapshot", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}

	return decodeCart(cartID, data), nil
}

func (r *cartSnapshotRepository) Save(ctx context.Context, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.ID), data, 0).Err(); err != nil {
		logger.Error("Failed to write cart snapshot", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return fmt.Errorf("failed to write cart snapshot: %w", err)
	}

	logger.Debug("Cart snapshot persisted", map[string]interface{}{
		"cart_id":     cart.ID,
		"total_items": cart.TotalItems,
	})
	return nil
}

func (r *cartSnapshotRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, cartKey(cartID)).Err(); err != nil {
		logger.Error("Failed to delete cart snapshot", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

// decodeCart parses a persisted snapshot. A corrupt payload is logged and
// discarded; aggregates are always rederived from the restored items so the
// collection stays the single source of truth.
func decodeCart(cartID string, data []byte) *model.Cart {
	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		logger.Warn("Discarding unparseable cart snapshot", map[string]interface{}{
			"cart_id": cartID,
			"error":   err.Error(),
		})
		return nil
	}

	cart.ID = cartID
	if cart.Items == nil {
		cart.Items = []model.LineItem{}
	}
	cart.Recompute()
	return &cart
}
