// Package state holds the local inventory and cart collections and notifies a
// single subscriber after every assignment.
//
// State is not safe for concurrent use. The owner serializes every access,
// including reads made from inside the change callback.
package state

import "github.com/rl1809/cart-sync/internal/core/domain"

type State struct {
	inventory []domain.InventoryItem
	cart      []domain.CartItem
	onChange  func()
}

func New() *State {
	return &State{
		inventory: []domain.InventoryItem{},
		cart:      []domain.CartItem{},
	}
}

func (s *State) Inventory() []domain.InventoryItem {
	return s.inventory
}

func (s *State) Cart() []domain.CartItem {
	return s.cart
}

// SetInventory replaces the inventory and then notifies the subscriber.
// The slice is kept as is and must not be modified afterwards.
func (s *State) SetInventory(items []domain.InventoryItem) {
	if items == nil {
		items = []domain.InventoryItem{}
	}
	s.inventory = items
	s.notify()
}

// SetCart replaces the cart and then notifies the subscriber.
// The slice is kept as is and must not be modified afterwards.
func (s *State) SetCart(items []domain.CartItem) {
	if items == nil {
		items = []domain.CartItem{}
	}
	s.cart = items
	s.notify()
}

// Subscribe registers the change callback. A later call replaces it.
func (s *State) Subscribe(fn func()) {
	s.onChange = fn
}

func (s *State) Snapshot() domain.Snapshot {
	return domain.Snapshot{Inventory: s.inventory, Cart: s.cart}
}

func (s *State) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
