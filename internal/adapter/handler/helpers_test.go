package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/cart-sync/internal/adapter/gateway"
	"github.com/rl1809/cart-sync/internal/adapter/storage"
	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/service"
	"github.com/rl1809/cart-sync/internal/core/state"
)

type storeEnv struct {
	server  *httptest.Server
	memory  *storage.MemoryAdapter
	service *service.StoreService
}

func newStoreEnv(t *testing.T, inventory []domain.InventoryItem) *storeEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	memory := storage.NewMemoryAdapter()
	svc := service.NewStoreService(memory, memory, logger)
	require.NoError(t, svc.SeedInventory(context.Background(), inventory))

	r := mux.NewRouter()
	NewStoreHandler(svc, logger).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &storeEnv{server: srv, memory: memory, service: svc}
}

type storefrontEnv struct {
	server *httptest.Server
	state  *state.State
	cart   *service.CartService
}

func newStorefrontEnv(t *testing.T, storeURL string) *storefrontEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	st := state.New()
	gw := gateway.NewHTTPGateway(storeURL, nil, logger)
	cart := service.NewCartService(gw, st, logger)

	r := mux.NewRouter()
	NewHTTPHandler(cart).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &storefrontEnv{server: srv, state: st, cart: cart}
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
