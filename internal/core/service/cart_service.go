package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/state"
	"github.com/rl1809/cart-sync/internal/port"
)

var ErrCheckoutIncomplete = errors.New("checkout incomplete")

// CartService reconciles local quantities with remote cart records and is the
// only writer of the state. The mutex is held for each read-compute-write
// section and released across every gateway call.
type CartService struct {
	gateway port.CartGateway
	state   *state.State
	logger  *zap.Logger
	mu      sync.Mutex
}

func NewCartService(gateway port.CartGateway, st *state.State, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		gateway: gateway,
		state:   st,
		logger:  logger,
	}
}

// Initialize loads inventory and cart concurrently and assigns both only when
// both requests succeed.
func (s *CartService) Initialize(ctx context.Context) error {
	var (
		g         errgroup.Group
		inventory []domain.InventoryItem
		cart      []domain.CartItem
	)

	g.Go(func() error {
		var err error
		inventory, err = s.gateway.FetchInventory(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		cart, err = s.gateway.FetchCart(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to initialize", zap.Error(err))
		return fmt.Errorf("initialize: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetInventory(inventory)
	s.state.SetCart(cart)

	s.logger.Info("state initialized",
		zap.Int("inventory_items", len(inventory)),
		zap.Int("cart_items", len(cart)))
	return nil
}

func (s *CartService) Increment(id int) {
	s.AdjustQuantity(id, 1)
}

func (s *CartService) Decrement(id int) {
	s.AdjustQuantity(id, -1)
}

// AdjustQuantity changes the selected amount of an inventory item, clamped at
// zero. Unknown ids are ignored.
func (s *CartService) AdjustQuantity(id, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustQuantity(id, delta)
}

func (s *CartService) adjustQuantity(id, delta int) {
	current := s.state.Inventory()
	if _, ok := domain.FindInventoryItem(current, id); !ok {
		return
	}

	next := make([]domain.InventoryItem, len(current))
	copy(next, current)
	for i := range next {
		if next[i].ID == id {
			next[i].Amount = max(0, next[i].Amount+delta)
		}
	}
	s.state.SetInventory(next)
}

// AddToCart moves the selected amount of an inventory item into the cart,
// amending the existing cart record when there is one. Local state changes
// only after the remote call succeeds: cart first, then inventory.
func (s *CartService) AddToCart(ctx context.Context, id int) error {
	s.mu.Lock()
	item, ok := domain.FindInventoryItem(s.state.Inventory(), id)
	if !ok || item.Amount <= 0 {
		s.mu.Unlock()
		return nil
	}
	existing, inCart := domain.FindCartItem(s.state.Cart(), id)
	s.mu.Unlock()

	if inCart {
		return s.mergeIntoCart(ctx, item, existing)
	}
	return s.createInCart(ctx, item)
}

func (s *CartService) mergeIntoCart(ctx context.Context, item domain.InventoryItem, existing domain.CartItem) error {
	updated, err := s.gateway.AmendCartRecord(ctx, item.ID, existing.Amount+item.Amount)
	if err != nil {
		s.logger.Error("failed to update cart item", zap.Int("item_id", item.ID), zap.Error(err))
		return fmt.Errorf("amend cart record %d: %w", item.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Cart()
	next := make([]domain.CartItem, len(current))
	for i, c := range current {
		if c.ID == item.ID {
			c = updated
		}
		next[i] = c
	}
	s.state.SetCart(next)
	s.adjustQuantity(item.ID, -item.Amount)
	return nil
}

func (s *CartService) createInCart(ctx context.Context, item domain.InventoryItem) error {
	created, err := s.gateway.CreateCartRecord(ctx, item)
	if err != nil {
		s.logger.Error("failed to add item to cart", zap.Int("item_id", item.ID), zap.Error(err))
		return fmt.Errorf("create cart record %d: %w", item.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Cart()
	next := make([]domain.CartItem, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, created)
	s.state.SetCart(next)
	s.adjustQuantity(item.ID, -item.Amount)
	return nil
}

// DeleteFromCart removes a cart record remotely and, once confirmed, locally.
func (s *CartService) DeleteFromCart(ctx context.Context, id int) error {
	if err := s.gateway.DeleteCartRecord(ctx, id); err != nil {
		s.logger.Error("failed to delete item from cart", zap.Int("item_id", id), zap.Error(err))
		return fmt.Errorf("delete cart record %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Cart()
	next := make([]domain.CartItem, 0, len(current))
	for _, c := range current {
		if c.ID != id {
			next = append(next, c)
		}
	}
	s.state.SetCart(next)
	return nil
}

// Checkout deletes every cart record concurrently and empties the local cart
// only if all deletes succeed. After a partial failure the local cart keeps
// records that are already gone remotely; the whole checkout should be retried.
func (s *CartService) Checkout(ctx context.Context) error {
	s.mu.Lock()
	items := s.state.Cart()
	s.mu.Unlock()

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := s.gateway.DeleteCartRecord(ctx, item.ID); err != nil {
				failed.Add(1)
				s.logger.Error("failed to delete cart record during checkout",
					zap.Int("item_id", item.ID), zap.Error(err))
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("checkout incomplete",
			zap.Int32("failed_deletes", failed.Load()),
			zap.Int("cart_items", len(items)))
		return fmt.Errorf("%w: %d of %d deletes failed: %w", ErrCheckoutIncomplete, failed.Load(), len(items), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetCart([]domain.CartItem{})

	s.logger.Info("checkout complete", zap.Int("cart_items", len(items)))
	return nil
}

// Snapshot returns the current collections. They are replaced, never
// modified, so the result stays valid after the lock is released.
func (s *CartService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}
