package slot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv cart.KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, cart.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "k", []byte(`[1]`)))
	require.NoError(t, kv.Put(ctx, "k", []byte(`[1,2]`)))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, cart.ErrNotFound)

	// deleting twice is fine
	require.NoError(t, kv.Delete(ctx, "k"))
}

func seedCart(t *testing.T, kv cart.KV) []cart.Item {
	t.Helper()
	ctx := context.Background()
	s := cart.Open(ctx, cart.NewKVSlot(kv, cart.DefaultKey))
	require.NoError(t, s.Add(ctx, cart.Product{ID: "1", Name: "Basmati Rice", Price: decimal.RequireFromString("4.75")}))
	require.NoError(t, s.Add(ctx, cart.Product{ID: "2", Name: "Ghee", Price: decimal.RequireFromString("8.20")}))
	s.SetQuantity(ctx, "1", 2)
	return s.Items()
}

func assertRestored(t *testing.T, want []cart.Item, kv cart.KV) {
	t.Helper()
	got := cart.Open(context.Background(), cart.NewKVSlot(kv, cart.DefaultKey)).Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].Price.Equal(got[i].Price))
	}
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	b, err := OpenBolt(path)
	require.NoError(t, err)

	exerciseKV(t, b)

	want := seedCart(t, b)
	require.NoError(t, b.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()
	assertRestored(t, want, reopened)
}

func TestOpenBolt_SecondOpenReportsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	first, err := OpenBolt(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenBolt(path)
	require.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "storefront serve")
}

func TestOpenBolt_RequiresPath(t *testing.T) {
	_, err := OpenBolt("  ")
	require.Error(t, err)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.sqlite")
	require.NoError(t, db.RunMigrations(db.DriverSQLite, path, zap.NewNop()))

	sqlDB, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := NewSQLite(sqlDB)

	exerciseKV(t, s)

	want := seedCart(t, s)
	require.NoError(t, s.Close())

	sqlDB, err = db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	reopened := NewSQLite(sqlDB)
	defer reopened.Close()
	assertRestored(t, want, reopened)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedis(client, "storefront:")
	defer r.Close()

	exerciseKV(t, r)

	want := seedCart(t, r)
	assert.True(t, mr.Exists("storefront:"+cart.DefaultKey))
	assertRestored(t, want, NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "storefront:"))
}

func TestRedis_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	r := NewRedis(client, "")
	defer r.Close()
	mr.Close()

	_, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cart.ErrNotFound)

	// an unreachable slot never blocks the cart
	s := cart.Open(context.Background(), cart.NewKVSlot(r, cart.DefaultKey))
	assert.Empty(t, s.Items())
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []config.SlotConfig{
		{Driver: "bolt", Path: filepath.Join(dir, "nested", "a.db")},
		{Driver: "sqlite", Path: filepath.Join(dir, "b.sqlite"), Migrate: true},
		{Driver: "memory"},
	}
	for _, cfg := range cases {
		t.Run(cfg.Driver, func(t *testing.T) {
			backend, err := Open(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer backend.Close()

			exerciseKV(t, backend.KV)
		})
	}

	_, err := Open(ctx, config.SlotConfig{Driver: "tape"}, zap.NewNop())
	require.Error(t, err)
}
