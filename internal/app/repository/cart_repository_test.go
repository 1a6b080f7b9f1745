package repository

import (
	"encoding/json"
	"testing"

	"github.com/mkim-dev/storefront-backend/internal/app/model"
	"github.com/mkim-dev/storefront-backend/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCart_RoundTrip(t *testing.T) {
	cart := model.NewCart("c1")
	cart.AddItem(&catalog.Product{ID: 1, Title: "Pen", Price: 2.5, DiscountPercentage: 10})
	cart.AddItem(&catalog.Product{ID: 2, Title: "Notebook", Price: 8})
	cart.UpdateQuantity(2, 3)

	data, err := json.Marshal(cart)
	require.NoError(t, err)

	restored := decodeCart("c1", data)
	require.NotNil(t, restored)
	assert.Equal(t, cart.Items, restored.Items)
	assert.Equal(t, cart.TotalItems, restored.TotalItems)
	assert.InDelta(t, cart.TotalPrice, restored.TotalPrice, 1e-9)
}

func TestDecodeCart_CorruptPayloadDiscarded(t *testing.T) {
	assert.Nil(t, decodeCart("c1", []byte("not json at all")))
	assert.Nil(t, decodeCart("c1", []byte(`{"items": "wrong type"}`)))
}

func TestDecodeCart_RecomputesDriftedAggregates(t *testing.T) {
	// A snapshot whose stored aggregates disagree with its items must be
	// repaired from the items on restore.
	data := []byte(`{
		"id": "stale",
		"items": [
			{"product_id": 1, "title": "Pen", "price": 10, "discount_percentage": 0, "quantity": 2}
		],
		"total_items": 40,
		"total_price": 12345
	}`)

	restored := decodeCart("c1", data)
	require.NotNil(t, restored)
	assert.Equal(t, "c1", restored.ID)
	assert.Equal(t, 2, restored.TotalItems)
	assert.InDelta(t, 20.0, restored.TotalPrice, 1e-9)
	assert.Equal(t, 20.0, restored.Items[0].Total)
}

func TestDecodeCart_NilItemsBecomesEmpty(t *testing.T) {
	restored := decodeCart("c1", []byte(`{"id": "c1"}`))
	require.NotNil(t, restored)
	assert.NotNil(t, restored.Items)
	assert.Empty(t, restored.Items)
}
