package render

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// TextRenderer prints the full inventory and cart on every notification.
type TextRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(snap domain.Snapshot) error {
	var buf bytes.Buffer

	buf.WriteString("Inventory\n")
	if len(snap.Inventory) == 0 {
		buf.WriteString("  (empty)\n")
	}
	for _, item := range snap.Inventory {
		fmt.Fprintf(&buf, "  #%d %s: %d\n", item.ID, item.Content, item.Amount)
	}

	buf.WriteString("Cart\n")
	if len(snap.Cart) == 0 {
		buf.WriteString("  (empty)\n")
	}
	for _, item := range snap.Cart {
		fmt.Fprintf(&buf, "  #%d %s: %d\n", item.ID, item.Content, item.Amount)
	}
	buf.WriteString("\n")

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.w.Write(buf.Bytes())
	return err
}
