package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE session (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, []byte("tok-1")))

	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Equal(t, []byte("tok-1"), v)
}

func TestGet_MissingKeyIsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyServerURL, []byte("http://old")))
	require.NoError(t, r.Set(ctx, KeyServerURL, []byte("http://new")))

	v, err := r.Get(ctx, KeyServerURL)
	require.NoError(t, err)
	require.Equal(t, []byte("http://new"), v)
}

func TestListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyToken, []byte("t")))
	require.NoError(t, r.Set(ctx, KeyUser, []byte(`{"id":"u1"}`)))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte(`{"id":"u1"}`), m[KeyUser])

	require.NoError(t, r.Delete(ctx, KeyToken))
	require.NoError(t, r.Delete(ctx, KeyToken))
	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestClosedDatabaseErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get session[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set session[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete session[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear session")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list session")
}
