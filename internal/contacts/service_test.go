package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

func TestAddClientAndSupplier(t *testing.T) {
	svc := NewService(nil)
	book := ledger.NewStore(ledger.DefaultLowStockThreshold)
	ctx := context.Background()

	client, err := svc.AddClient(ctx, book, ContactInput{Name: " Ana ", Contact: "ana@example.com", Notes: " VIP "})
	require.NoError(t, err)
	assert.Equal(t, "Ana", client.Name)
	assert.Equal(t, "VIP", client.Notes)
	assert.Equal(t, ledger.ContactClient, client.Kind)

	supplier, err := svc.AddSupplier(ctx, book, ContactInput{Name: "Textiles SA", Contact: "+57 300 000"})
	require.NoError(t, err)
	assert.Equal(t, ledger.ContactSupplier, supplier.Kind)

	assert.Len(t, svc.SearchClients(book, ""), 1)
	assert.Len(t, svc.SearchSuppliers(book, ""), 1)
}

func TestAddContactRequiresName(t *testing.T) {
	svc := NewService(nil)
	book := ledger.NewStore(ledger.DefaultLowStockThreshold)

	_, err := svc.AddClient(context.Background(), book, ContactInput{Name: " ", Contact: "x"})
	require.ErrorIs(t, err, ledger.ErrValidation)
	assert.Equal(t, "Name is required.", ledger.UserMessage(err))
	assert.Empty(t, book.Snapshot().Clients)
}

func TestAddContactRejectsUnknownKind(t *testing.T) {
	svc := NewService(nil)
	book := ledger.NewStore(ledger.DefaultLowStockThreshold)

	_, err := svc.Add(context.Background(), book, ledger.ContactKind("partner"), ContactInput{Name: "Ana"})
	require.ErrorIs(t, err, ledger.ErrValidation)
}

func TestSearchContacts(t *testing.T) {
	svc := NewService(nil)
	book := ledger.NewStore(ledger.DefaultLowStockThreshold)
	ctx := context.Background()
	for _, name := range []string{"Ana Gómez", "Bruno", "Carla"} {
		_, err := svc.AddClient(ctx, book, ContactInput{Name: name, Notes: "wholesale"})
		require.NoError(t, err)
	}
	_, err := svc.AddSupplier(ctx, book, ContactInput{Name: "Ana Textiles"})
	require.NoError(t, err)

	assert.Equal(t, svc.SearchClients(book, "gómez"), svc.SearchClients(book, "GÓMEZ"))
	assert.Len(t, svc.SearchClients(book, "ana"), 1)
	assert.Len(t, svc.SearchClients(book, "WHOLESALE"), 3)
	assert.Len(t, svc.Search(book, ledger.ContactSupplier, "ana"), 1)
	assert.Empty(t, svc.SearchSuppliers(book, "bruno"))
}
