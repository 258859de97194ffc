package domain

// InventoryItem is a catalogue entry with the quantity the shopper has
// selected locally. Amount is never negative.
type InventoryItem struct {
	ID      int    `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
	Amount  int    `json:"amount" yaml:"amount"`
}

func FindInventoryItem(items []InventoryItem, id int) (InventoryItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return InventoryItem{}, false
}
