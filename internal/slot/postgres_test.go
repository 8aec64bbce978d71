package slot

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestPostgres_Get(t *testing.T) {
	p, mock := newMockPostgres(t)
	mock.ExpectQuery(`SELECT value FROM kv_slots WHERE key=\$1`).
		WithArgs("groceryapp-cart").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := p.Get(context.Background(), "groceryapp-cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMissing(t *testing.T) {
	p, mock := newMockPostgres(t)
	mock.ExpectQuery(`SELECT value FROM kv_slots`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := p.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPostgres_GetError(t *testing.T) {
	p, mock := newMockPostgres(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT value FROM kv_slots`).WithArgs("k").WillReturnError(boom)

	_, err := p.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}

func TestPostgres_PutUpserts(t *testing.T) {
	p, mock := newMockPostgres(t)
	mock.ExpectExec(`INSERT INTO kv_slots\(key, value\)`).
		WithArgs("k", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, p.Put(context.Background(), "k", []byte(`[1]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	p, mock := newMockPostgres(t)
	mock.ExpectExec(`DELETE FROM kv_slots WHERE key=\$1`).
		WithArgs("k").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, p.Delete(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT value FROM kv_slots`).WithArgs(cart.DefaultKey).WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO kv_slots`).
		WithArgs(cart.DefaultKey, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := cart.Open(ctx, cart.NewKVSlot(p, cart.DefaultKey))
	require.NoError(t, s.Add(ctx, cart.Product{ID: "1", Name: "Milk"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
