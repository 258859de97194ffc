package domain

// CartItem is the local copy of a remote cart record. Its ID is the ID of the
// inventory item it was created from, and at most one exists per ID.
type CartItem struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Amount  int    `json:"amount"`
}

func FindCartItem(items []CartItem, id int) (CartItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// Snapshot is a read-only view of both collections handed to renderers.
type Snapshot struct {
	Inventory []InventoryItem `json:"inventory"`
	Cart      []CartItem      `json:"cart"`
}
