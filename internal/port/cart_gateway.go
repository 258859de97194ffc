package port

import (
	"context"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// CartGateway is the client's only path to the remote store. Every method is a
// single attempt; failures are returned as *domain.Failure.
type CartGateway interface {
	// FetchInventory reads the whole inventory collection
	FetchInventory(ctx context.Context) ([]domain.InventoryItem, error)

	// FetchCart reads the whole cart collection
	FetchCart(ctx context.Context) ([]domain.CartItem, error)

	// CreateCartRecord creates a cart record from an inventory item and returns the stored record
	CreateCartRecord(ctx context.Context, item domain.InventoryItem) (domain.CartItem, error)

	// AmendCartRecord sets a new amount on an existing cart record
	AmendCartRecord(ctx context.Context, id int, amount int) (domain.CartItem, error)

	// DeleteCartRecord removes a cart record
	DeleteCartRecord(ctx context.Context, id int) error
}
