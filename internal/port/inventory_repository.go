package port

import (
	"context"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

type InventoryRepository interface {
	// ListInventory returns every inventory item ordered by ID
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)

	// SaveInventory inserts or overwrites the given items
	SaveInventory(ctx context.Context, items []domain.InventoryItem) error
}
