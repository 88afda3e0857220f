package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestGormStoreGetSetRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var missing counterDoc
	assert.True(t, errors.Is(st.Get(ctx, "counters", "a", &missing), ErrNotFound))

	require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 7}))
	var got counterDoc
	require.NoError(t, st.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 7, got.Value)

	// Overwrite through plain Set bumps the stored document.
	require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 8}))
	require.NoError(t, st.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 8, got.Value)
}

func TestGormStoreListAndDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 1}))
	require.NoError(t, st.Set(ctx, "counters", "b", counterDoc{Value: 2}))
	require.NoError(t, st.Set(ctx, "others", "c", counterDoc{Value: 3}))

	all, err := st.List(ctx, "counters")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, st.Delete(ctx, "counters", "a"))
	assert.True(t, errors.Is(st.Delete(ctx, "counters", "a"), ErrNotFound))
}

func TestGormStoreTransactionReadModifyWrite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 1}))

	err := st.RunTransaction(ctx, func(tx Tx) error {
		var doc counterDoc
		if err := tx.Get("counters", "a", &doc); err != nil {
			return err
		}
		doc.Value += 10
		return tx.Set("counters", "a", doc)
	})
	require.NoError(t, err)

	var got counterDoc
	require.NoError(t, st.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 11, got.Value)
}

func TestGormStoreTransactionConflictRetries(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 0}))

	attempts := 0
	err := st.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		var doc counterDoc
		if err := tx.Get("counters", "a", &doc); err != nil {
			return err
		}
		if attempts == 1 {
			require.NoError(t, st.Set(ctx, "counters", "a", counterDoc{Value: 50}))
		}
		doc.Value++
		return tx.Set("counters", "a", doc)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	var got counterDoc
	require.NoError(t, st.Get(ctx, "counters", "a", &got))
	assert.Equal(t, 51, got.Value)
}
