package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// Mock CartGateway backed by in-memory remote collections
type mockGateway struct {
	mu sync.Mutex

	inventory []domain.InventoryItem
	cart      map[int]domain.CartItem

	fetchInventoryErr error
	fetchCartErr      error
	createErr         error
	amendErr          error
	deleteErr         map[int]error

	created []domain.InventoryItem
	amended map[int]int
	deleted []int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		cart:      make(map[int]domain.CartItem),
		deleteErr: make(map[int]error),
		amended:   make(map[int]int),
	}
}

func (m *mockGateway) FetchInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchInventoryErr != nil {
		return nil, m.fetchInventoryErr
	}
	return append([]domain.InventoryItem(nil), m.inventory...), nil
}

func (m *mockGateway) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchCartErr != nil {
		return nil, m.fetchCartErr
	}
	items := make([]domain.CartItem, 0, len(m.cart))
	for _, item := range m.cart {
		items = append(items, item)
	}
	return items, nil
}

func (m *mockGateway) CreateCartRecord(ctx context.Context, item domain.InventoryItem) (domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, item)
	if m.createErr != nil {
		return domain.CartItem{}, m.createErr
	}
	if _, exists := m.cart[item.ID]; exists {
		return domain.CartItem{}, domain.NewRequestFailure("create cart record", http.StatusConflict)
	}
	record := domain.CartItem{ID: item.ID, Content: item.Content, Amount: item.Amount}
	m.cart[item.ID] = record
	return record, nil
}

func (m *mockGateway) AmendCartRecord(ctx context.Context, id int, amount int) (domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.amended[id] = amount
	if m.amendErr != nil {
		return domain.CartItem{}, m.amendErr
	}
	record, ok := m.cart[id]
	if !ok {
		return domain.CartItem{}, domain.NewRequestFailure("amend cart record", http.StatusNotFound)
	}
	record.Amount = amount
	m.cart[id] = record
	return record, nil
}

func (m *mockGateway) DeleteCartRecord(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	delete(m.cart, id)
	return nil
}

func (m *mockGateway) remoteCartLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cart)
}
