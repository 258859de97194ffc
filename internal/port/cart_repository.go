package port

import (
	"context"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

type CartRepository interface {
	// ListCart returns every cart record ordered by ID
	ListCart(ctx context.Context) ([]domain.CartItem, error)

	// GetCartItem returns nil if no record exists for id
	GetCartItem(ctx context.Context, id int) (*domain.CartItem, error)

	// CreateCartItem stores a new record, returns false if the ID is already taken
	CreateCartItem(ctx context.Context, item domain.CartItem) (bool, error)

	// UpdateCartAmount sets the amount of a record, returns false if it does not exist
	UpdateCartAmount(ctx context.Context, id int, amount int) (bool, error)

	// DeleteCartItem removes a record, returns false if it does not exist
	DeleteCartItem(ctx context.Context, id int) (bool, error)
}
