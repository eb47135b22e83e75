package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	store := NewStore(DefaultLowStockThreshold)
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		tx.InsertProduct(Product{ID: "p1", Name: "T-Shirt", Stock: 10})
		return nil
	}))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		require.NoError(t, tx.SetStock("p1", 2))
		tx.InsertSale(Sale{ID: "s1", Product: "T-Shirt", Quantity: 8})
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap := store.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 10, snap.Products[0].Stock)
	assert.Empty(t, snap.Sales)
}

func TestSnapshotIsolatedFromStore(t *testing.T) {
	store := NewStore(DefaultLowStockThreshold)
	ctx := context.Background()
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		tx.InsertProduct(Product{ID: "p1", Name: "Cap", Stock: 3})
		return nil
	}))

	snap := store.Snapshot()
	snap.Products[0].Stock = 99

	assert.Equal(t, 3, store.Snapshot().Products[0].Stock)
}

func TestProductByNameExactMatch(t *testing.T) {
	store := NewStore(DefaultLowStockThreshold)
	ctx := context.Background()
	err := store.WithTx(ctx, func(ctx context.Context, tx *Tx) error {
		tx.InsertProduct(Product{ID: "p1", Name: "Hoodie"})
		_, err := tx.ProductByName("hoodie")
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.True(t, tx.HasProductName(" HOODIE "))
		p, err := tx.ProductByName(" Hoodie ")
		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestSnapshotSplitsContacts(t *testing.T) {
	store := NewStore(DefaultLowStockThreshold)
	require.NoError(t, store.WithTx(context.Background(), func(ctx context.Context, tx *Tx) error {
		tx.InsertContact(Contact{ID: "c1", Kind: ContactClient, Name: "Ana"})
		tx.InsertContact(Contact{ID: "c2", Kind: ContactSupplier, Name: "Textiles SA"})
		return nil
	}))
	snap := store.Snapshot()
	require.Len(t, snap.Clients, 1)
	require.Len(t, snap.Suppliers, 1)
	assert.Equal(t, "Textiles SA", snap.Suppliers[0].Name)
}

func TestThresholdRejectsNegative(t *testing.T) {
	store := NewStore(DefaultLowStockThreshold)
	err := store.WithTx(context.Background(), func(ctx context.Context, tx *Tx) error {
		return tx.SetLowStockThreshold(-1)
	})
	require.ErrorIs(t, err, ErrInvalidThreshold)
	assert.Equal(t, DefaultLowStockThreshold, store.Snapshot().LowStockThreshold)
}

func TestRegistrySweepEvictsIdleStores(t *testing.T) {
	reg := NewRegistry(DefaultLowStockThreshold, time.Hour)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	first := reg.Get("a")
	reg.Get("b")
	assert.Same(t, first, reg.Get("a"))

	now = now.Add(45 * time.Minute)
	reg.Get("a")

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
	assert.Same(t, first, reg.Get("a"))
}

func TestStoreFromContext(t *testing.T) {
	assert.Nil(t, StoreFromContext(context.Background()))
	store := NewStore(1)
	ctx := ContextWithStore(context.Background(), store)
	assert.Same(t, store, StoreFromContext(ctx))
}
