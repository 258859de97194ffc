package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

const (
	inventoryPath   = "/inventory"
	cartPath        = "/cart"
	RequestIDHeader = "X-Request-ID"
)

// HTTPGateway talks to the remote store's JSON API. It makes exactly one
// attempt per call and keeps no local copy of anything it reads.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

type createCartRequest struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Amount  int    `json:"amount"`
}

type amendCartRequest struct {
	Amount int `json:"amount"`
}

func NewHTTPGateway(baseURL string, client *http.Client, logger *zap.Logger) *HTTPGateway {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (g *HTTPGateway) FetchInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	if err := g.do(ctx, "fetch inventory", http.MethodGet, inventoryPath, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

func (g *HTTPGateway) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := g.do(ctx, "fetch cart", http.MethodGet, cartPath, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (g *HTTPGateway) CreateCartRecord(ctx context.Context, item domain.InventoryItem) (domain.CartItem, error) {
	body := createCartRequest{ID: item.ID, Content: item.Content, Amount: item.Amount}

	var created domain.CartItem
	if err := g.do(ctx, "create cart record", http.MethodPost, cartPath, body, &created); err != nil {
		return domain.CartItem{}, err
	}
	return created, nil
}

func (g *HTTPGateway) AmendCartRecord(ctx context.Context, id int, amount int) (domain.CartItem, error) {
	path := fmt.Sprintf("%s/%d", cartPath, id)

	var updated domain.CartItem
	if err := g.do(ctx, "amend cart record", http.MethodPatch, path, amendCartRequest{Amount: amount}, &updated); err != nil {
		return domain.CartItem{}, err
	}
	return updated, nil
}

func (g *HTTPGateway) DeleteCartRecord(ctx context.Context, id int) error {
	path := fmt.Sprintf("%s/%d", cartPath, id)
	return g.do(ctx, "delete cart record", http.MethodDelete, path, nil, nil)
}

func (g *HTTPGateway) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.NewTransportFailure(op, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return domain.NewTransportFailure(op, err)
	}
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("remote store unreachable",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return domain.NewTransportFailure(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		g.logger.Debug("remote store rejected request",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode))
		return domain.NewRequestFailure(op, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportFailure(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
