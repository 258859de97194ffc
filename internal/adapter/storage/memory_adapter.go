package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// MemoryAdapter keeps inventory and cart records in process. It backs the
// store in tests and when no database is configured.
type MemoryAdapter struct {
	mu        sync.RWMutex
	inventory map[int]domain.InventoryItem
	cart      map[int]domain.CartItem
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		inventory: make(map[int]domain.InventoryItem),
		cart:      make(map[int]domain.CartItem),
	}
}

func (m *MemoryAdapter) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(m.inventory))
	for _, item := range m.inventory {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int { return a.ID - b.ID })
	return items, nil
}

func (m *MemoryAdapter) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		m.inventory[item.ID] = item
	}
	return nil
}

func (m *MemoryAdapter) ListCart(ctx context.Context) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.CartItem, 0, len(m.cart))
	for _, item := range m.cart {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.CartItem) int { return a.ID - b.ID })
	return items, nil
}

func (m *MemoryAdapter) GetCartItem(ctx context.Context, id int) (*domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.cart[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *MemoryAdapter) CreateCartItem(ctx context.Context, item domain.CartItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cart[item.ID]; exists {
		return false, nil
	}
	m.cart[item.ID] = item
	return true, nil
}

func (m *MemoryAdapter) UpdateCartAmount(ctx context.Context, id int, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.cart[id]
	if !ok {
		return false, nil
	}
	item.Amount = amount
	m.cart[id] = item
	return true, nil
}

func (m *MemoryAdapter) DeleteCartItem(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cart[id]; !ok {
		return false, nil
	}
	delete(m.cart, id)
	return true, nil
}
