package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/port"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
	ErrInvalidRecord  = errors.New("invalid record")
)

// StoreService is the server side of the cart API: a key-based record store
// that keeps at most one cart record per item id.
type StoreService struct {
	inventory port.InventoryRepository
	cart      port.CartRepository
	logger    *zap.Logger
}

func NewStoreService(inventory port.InventoryRepository, cart port.CartRepository, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{
		inventory: inventory,
		cart:      cart,
		logger:    logger,
	}
}

func (s *StoreService) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.inventory.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

func (s *StoreService) SeedInventory(ctx context.Context, items []domain.InventoryItem) error {
	for _, item := range items {
		if item.ID <= 0 || item.Amount < 0 {
			return fmt.Errorf("%w: inventory item %d", ErrInvalidRecord, item.ID)
		}
	}
	if err := s.inventory.SaveInventory(ctx, items); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	s.logger.Info("inventory seeded", zap.Int("items", len(items)))
	return nil
}

func (s *StoreService) ListCart(ctx context.Context) ([]domain.CartItem, error) {
	items, err := s.cart.ListCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

func (s *StoreService) GetCartItem(ctx context.Context, id int) (domain.CartItem, error) {
	item, err := s.cart.GetCartItem(ctx, id)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return domain.CartItem{}, ErrRecordNotFound
	}
	return *item, nil
}

func (s *StoreService) CreateCartItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	if item.ID <= 0 || item.Amount <= 0 {
		return domain.CartItem{}, ErrInvalidRecord
	}

	ok, err := s.cart.CreateCartItem(ctx, item)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("create cart item: %w", err)
	}
	if !ok {
		return domain.CartItem{}, ErrRecordExists
	}
	return item, nil
}

func (s *StoreService) UpdateCartAmount(ctx context.Context, id, amount int) (domain.CartItem, error) {
	if amount <= 0 {
		return domain.CartItem{}, ErrInvalidRecord
	}

	ok, err := s.cart.UpdateCartAmount(ctx, id, amount)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("update cart item: %w", err)
	}
	if !ok {
		return domain.CartItem{}, ErrRecordNotFound
	}
	return s.GetCartItem(ctx, id)
}

func (s *StoreService) DeleteCartItem(ctx context.Context, id int) error {
	ok, err := s.cart.DeleteCartItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if !ok {
		return ErrRecordNotFound
	}
	return nil
}
