package mirror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type recordingRemote struct {
	calls []string
	err   error
}

func (r *recordingRemote) Add(ctx context.Context, id clients.ID, name string, qty int) error {
	r.calls = append(r.calls, fmt.Sprintf("add %s %s %d", id, name, qty))
	return r.err
}

func (r *recordingRemote) Update(ctx context.Context, id clients.ID, name string, qty int) error {
	r.calls = append(r.calls, fmt.Sprintf("update %s %s %d", id, name, qty))
	return r.err
}

func (r *recordingRemote) Delete(ctx context.Context, id clients.ID, name string) error {
	r.calls = append(r.calls, fmt.Sprintf("delete %s %s", id, name))
	return r.err
}

type session struct{ user *auth.User }

func (s session) Current() (auth.User, bool) {
	if s.user == nil {
		return auth.User{}, false
	}
	return *s.user, true
}

func product(id, name string) cart.Product {
	return cart.Product{ID: cart.ProductID(id), Name: name, Price: decimal.NewFromInt(1)}
}

func TestMirror_ReplaysTransitions(t *testing.T) {
	remote := &recordingRemote{}
	m := New(remote, session{user: &auth.User{ID: "42"}}, nil)
	ctx := context.Background()
	store := cart.Open(ctx, cart.MemorySlot(), cart.WithObserver(m))

	require.NoError(t, store.Add(ctx, product("1", "Milk")))
	require.NoError(t, store.Add(ctx, product("1", "Milk")))
	require.NoError(t, store.Add(ctx, product("2", "Bread")))
	store.SetQuantity(ctx, "1", 5)
	store.SetQuantity(ctx, "2", 0)
	store.SetQuantity(ctx, "9", 3)
	store.Remove(ctx, "9")
	require.NoError(t, store.Add(ctx, product("3", "Eggs")))
	store.Clear(ctx)

	assert.Equal(t, []string{
		"add 42 Milk 1",
		"add 42 Milk 1",
		"add 42 Bread 1",
		"update 42 Milk 5",
		"delete 42 Bread",
		"add 42 Eggs 1",
		"delete 42 Milk",
		"delete 42 Eggs",
	}, remote.calls)
}

func TestMirror_SignedOutDoesNothing(t *testing.T) {
	remote := &recordingRemote{}
	ctx := context.Background()
	store := cart.Open(ctx, nil, cart.WithObserver(New(remote, session{}, nil)))

	require.NoError(t, store.Add(ctx, product("1", "Milk")))
	store.Clear(ctx)
	assert.Empty(t, remote.calls)
}

func TestMirror_FailuresAreLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	remote := &recordingRemote{err: errors.New("connection refused")}
	ctx := context.Background()
	store := cart.Open(ctx, nil, cart.WithObserver(New(remote, session{user: &auth.User{ID: "42"}}, zap.New(core))))

	require.NoError(t, store.Add(ctx, product("1", "Milk")))
	assert.Equal(t, 1, store.Count())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "add", logs.All()[0].ContextMap()["command"])
}
