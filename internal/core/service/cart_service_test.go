package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/state"
)

type testEnv struct {
	gateway *mockGateway
	state   *state.State
	svc     *CartService
	logs    *observer.ObservedLogs
	changes int
}

func newTestEnv(inventory []domain.InventoryItem, cart []domain.CartItem) *testEnv {
	core, logs := observer.New(zap.ErrorLevel)
	env := &testEnv{
		gateway: newMockGateway(),
		state:   state.New(),
		logs:    logs,
	}
	for _, item := range cart {
		env.gateway.cart[item.ID] = item
	}
	env.state.SetInventory(inventory)
	env.state.SetCart(cart)
	env.state.Subscribe(func() { env.changes++ })
	env.svc = NewCartService(env.gateway, env.state, zap.New(core))
	return env
}

func amountOf(items []domain.InventoryItem, id int) int {
	item, _ := domain.FindInventoryItem(items, id)
	return item.Amount
}

func countCart(items []domain.CartItem, id int) int {
	n := 0
	for _, item := range items {
		if item.ID == id {
			n++
		}
	}
	return n
}

func TestAdjustQuantity_ClampsAtZero(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1, Content: "Apple", Amount: 0}}, nil)

	env.svc.AdjustQuantity(1, 3)
	assert.Equal(t, 3, amountOf(env.state.Inventory(), 1))

	env.svc.AdjustQuantity(1, -5)
	assert.Equal(t, 0, amountOf(env.state.Inventory(), 1))
	assert.Equal(t, 2, env.changes)
}

func TestAdjustQuantity_NeverNegative(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1, Amount: 2}, {ID: 2, Amount: 0}}, nil)

	deltas := []int{-1, -7, 3, -2, 5, -100, 1, -1, -1}
	for _, d := range deltas {
		env.svc.AdjustQuantity(1, d)
		env.svc.AdjustQuantity(2, d)
		for _, item := range env.state.Inventory() {
			require.GreaterOrEqual(t, item.Amount, 0, "item %d went negative", item.ID)
		}
	}
}

func TestAdjustQuantity_UnknownIDIsNoOp(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1, Amount: 1}}, nil)

	env.svc.AdjustQuantity(42, 1)

	assert.Equal(t, 0, env.changes)
	assert.Equal(t, 1, amountOf(env.state.Inventory(), 1))
}

func TestAdjustQuantity_ReplacesCollection(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1, Amount: 1}}, nil)
	before := env.state.Inventory()

	env.svc.Increment(1)

	assert.Equal(t, 1, before[0].Amount)
	assert.Equal(t, 2, amountOf(env.state.Inventory(), 1))

	env.svc.Decrement(1)
	assert.Equal(t, 1, amountOf(env.state.Inventory(), 1))
}

func TestAddToCart_CreatesRecord(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 2, Content: "Pear", Amount: 4}}, nil)

	err := env.svc.AddToCart(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, env.gateway.created, 1)
	assert.Equal(t, domain.InventoryItem{ID: 2, Content: "Pear", Amount: 4}, env.gateway.created[0])
	assert.Equal(t, []domain.CartItem{{ID: 2, Content: "Pear", Amount: 4}}, env.state.Cart())
	assert.Equal(t, 0, amountOf(env.state.Inventory(), 2))
	assert.Equal(t, 2, env.changes)
}

func TestAddToCart_CartCommittedBeforeInventory(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 2, Content: "Pear", Amount: 4}}, nil)

	var seen []domain.Snapshot
	env.state.Subscribe(func() { seen = append(seen, env.state.Snapshot()) })

	require.NoError(t, env.svc.AddToCart(context.Background(), 2))

	require.Len(t, seen, 2)
	assert.Len(t, seen[0].Cart, 1)
	assert.Equal(t, 4, amountOf(seen[0].Inventory, 2))
	assert.Equal(t, 0, amountOf(seen[1].Inventory, 2))
}

func TestAddToCart_MergesIntoExistingRecord(t *testing.T) {
	env := newTestEnv(
		[]domain.InventoryItem{{ID: 2, Content: "Pear", Amount: 2}},
		[]domain.CartItem{{ID: 2, Content: "Pear", Amount: 4}},
	)

	err := env.svc.AddToCart(context.Background(), 2)
	require.NoError(t, err)

	assert.Empty(t, env.gateway.created)
	assert.Equal(t, 6, env.gateway.amended[2])
	assert.Equal(t, []domain.CartItem{{ID: 2, Content: "Pear", Amount: 6}}, env.state.Cart())
	assert.Equal(t, 0, amountOf(env.state.Inventory(), 2))
}

func TestAddToCart_MergeKeepsOtherRecordsInPlace(t *testing.T) {
	env := newTestEnv(
		[]domain.InventoryItem{{ID: 2, Amount: 1}},
		[]domain.CartItem{{ID: 1, Amount: 1}, {ID: 2, Amount: 1}, {ID: 3, Amount: 1}},
	)

	require.NoError(t, env.svc.AddToCart(context.Background(), 2))

	cart := env.state.Cart()
	require.Len(t, cart, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{cart[0].ID, cart[1].ID, cart[2].ID})
	assert.Equal(t, 2, cart[1].Amount)
}

func TestAddToCart_NoOps(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1, Amount: 0}}, nil)

	require.NoError(t, env.svc.AddToCart(context.Background(), 1))
	require.NoError(t, env.svc.AddToCart(context.Background(), 99))

	assert.Empty(t, env.gateway.created)
	assert.Empty(t, env.gateway.amended)
	assert.Equal(t, 0, env.changes)
}

func TestAddToCart_RepeatedKeepsSingleRecord(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 5, Content: "Plum"}}, nil)
	ctx := context.Background()

	for _, amount := range []int{3, 1, 2} {
		env.svc.AdjustQuantity(5, amount)
		require.NoError(t, env.svc.AddToCart(ctx, 5))
		require.Equal(t, 1, countCart(env.state.Cart(), 5))
	}

	item, ok := domain.FindCartItem(env.state.Cart(), 5)
	require.True(t, ok)
	assert.Equal(t, 6, item.Amount)
	assert.Len(t, env.gateway.created, 1)
	assert.Equal(t, 1, env.gateway.remoteCartLen())
}

func TestAddToCart_FailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		cart    []domain.CartItem
		setup   func(g *mockGateway)
		message string
	}{
		{
			name:    "create fails",
			setup:   func(g *mockGateway) { g.createErr = domain.NewRequestFailure("create cart record", http.StatusInternalServerError) },
			message: "failed to add item to cart",
		},
		{
			name:    "amend fails",
			cart:    []domain.CartItem{{ID: 2, Content: "Pear", Amount: 4}},
			setup:   func(g *mockGateway) { g.amendErr = domain.NewTransportFailure("amend cart record", errors.New("connection refused")) },
			message: "failed to update cart item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv([]domain.InventoryItem{{ID: 2, Content: "Pear", Amount: 2}}, tt.cart)
			tt.setup(env.gateway)
			before := env.svc.Snapshot()

			err := env.svc.AddToCart(context.Background(), 2)
			require.Error(t, err)

			var failure *domain.Failure
			assert.True(t, errors.As(err, &failure))
			assert.Equal(t, before, env.svc.Snapshot())
			assert.Equal(t, 0, env.changes)
			assert.Equal(t, 1, env.logs.FilterMessage(tt.message).Len())
		})
	}
}

func TestDeleteFromCart_Success(t *testing.T) {
	env := newTestEnv(nil, []domain.CartItem{{ID: 1, Amount: 1}, {ID: 2, Amount: 2}})

	require.NoError(t, env.svc.DeleteFromCart(context.Background(), 1))

	assert.Equal(t, []domain.CartItem{{ID: 2, Amount: 2}}, env.state.Cart())
	assert.Equal(t, []int{1}, env.gateway.deleted)
	assert.Equal(t, 1, env.changes)
}

func TestDeleteFromCart_FailureLeavesCart(t *testing.T) {
	env := newTestEnv(nil, []domain.CartItem{{ID: 1, Amount: 1}})
	env.gateway.deleteErr[1] = domain.NewRequestFailure("delete cart record", http.StatusNotFound)
	before := env.svc.Snapshot()

	err := env.svc.DeleteFromCart(context.Background(), 1)

	status, ok := domain.IsRequestFailed(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, before, env.svc.Snapshot())
	assert.Equal(t, 0, env.changes)
	assert.Equal(t, 1, env.logs.FilterMessage("failed to delete item from cart").Len())
}

func TestCheckout_AllDeletesSucceed(t *testing.T) {
	env := newTestEnv(nil, []domain.CartItem{{ID: 1, Amount: 1}, {ID: 2, Amount: 2}, {ID: 3, Amount: 3}})

	require.NoError(t, env.svc.Checkout(context.Background()))

	assert.Empty(t, env.state.Cart())
	assert.NotNil(t, env.state.Cart())
	assert.ElementsMatch(t, []int{1, 2, 3}, env.gateway.deleted)
	assert.Equal(t, 0, env.gateway.remoteCartLen())
}

func TestCheckout_PartialFailureKeepsCart(t *testing.T) {
	cart := []domain.CartItem{{ID: 1, Content: "Apple", Amount: 1}, {ID: 2, Content: "Pear", Amount: 2}}
	env := newTestEnv(nil, cart)
	env.gateway.deleteErr[2] = domain.NewTransportFailure("delete cart record", errors.New("connection reset"))

	err := env.svc.Checkout(context.Background())

	require.ErrorIs(t, err, ErrCheckoutIncomplete)
	assert.True(t, domain.IsTransportError(err))
	assert.Equal(t, cart, env.state.Cart())
	assert.Equal(t, 0, env.changes)
	// every delete was still attempted
	assert.ElementsMatch(t, []int{1, 2}, env.gateway.deleted)
	// the remote store is left partially cleared
	assert.Equal(t, 1, env.gateway.remoteCartLen())
	assert.Equal(t, 1, env.logs.FilterMessage("checkout incomplete").Len())
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(nil, nil)

	require.NoError(t, env.svc.Checkout(context.Background()))

	assert.Empty(t, env.gateway.deleted)
	assert.Equal(t, 1, env.changes)
}

func TestInitialize_Success(t *testing.T) {
	env := newTestEnv(nil, nil)
	env.gateway.inventory = []domain.InventoryItem{{ID: 1, Content: "Apple"}, {ID: 2, Content: "Pear"}}
	env.gateway.cart[3] = domain.CartItem{ID: 3, Content: "Plum", Amount: 1}

	require.NoError(t, env.svc.Initialize(context.Background()))

	snap := env.svc.Snapshot()
	assert.Len(t, snap.Inventory, 2)
	assert.Equal(t, []domain.CartItem{{ID: 3, Content: "Plum", Amount: 1}}, snap.Cart)
	assert.Equal(t, 2, env.changes)
}

func TestInitialize_FailureKeepsPriorState(t *testing.T) {
	env := newTestEnv(nil, nil)
	env.gateway.inventory = []domain.InventoryItem{{ID: 1}}
	env.gateway.fetchCartErr = domain.NewRequestFailure("fetch cart", http.StatusServiceUnavailable)

	err := env.svc.Initialize(context.Background())

	require.Error(t, err)
	assert.Empty(t, env.state.Inventory())
	assert.Empty(t, env.state.Cart())
	assert.Equal(t, 0, env.changes)
	assert.Equal(t, 1, env.logs.FilterMessage("failed to initialize").Len())
}

func TestCartService_ConcurrentAdjustments(t *testing.T) {
	env := newTestEnv([]domain.InventoryItem{{ID: 1}}, nil)
	totalRequests := 50

	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.svc.Increment(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, totalRequests, amountOf(env.svc.Snapshot().Inventory, 1))
}

func TestNewCartService_NilLogger(t *testing.T) {
	svc := NewCartService(newMockGateway(), state.New(), nil)
	require.NotNil(t, svc.logger)
	svc.AdjustQuantity(1, 1)
}
