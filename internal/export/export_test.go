package export

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

func sampleSnapshot() ledger.Snapshot {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	return ledger.Snapshot{
		Products: []ledger.Product{
			{Name: "T-Shirt", Code: "TS-01", Stock: 7, Price: decimal.NewFromInt(20000), DirectCost: decimal.NewFromInt(8000)},
			{Name: "Cap", Stock: 2, Price: decimal.NewFromInt(9000)},
		},
		Sales: []ledger.Sale{
			{Date: day, Product: "T-Shirt", Quantity: 3, Buyer: "Ana", Size: "M", SalePrice: decimal.NewFromInt(20000)},
		},
		Expenses: []ledger.Expense{
			{Date: day, Type: ledger.ExpenseMarketing, Amount: decimal.NewFromInt(50000), Note: "flyers"},
		},
		Clients:   []ledger.Contact{{Kind: ledger.ContactClient, Name: "Ana", Contact: "ana@example.com"}},
		Suppliers: []ledger.Contact{},
	}
}

func TestWorkbookSheets(t *testing.T) {
	data, err := Workbook(sampleSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	sheets, err := ReadWorkbook(data)
	require.NoError(t, err)
	require.Len(t, sheets, 5)
	for _, name := range []string{"Inventory", "Sales", "Expenses", "Clients", "Suppliers"} {
		assert.Contains(t, sheets, name)
	}
	assert.NotContains(t, sheets, "Sheet1")

	inventory := sheets["Inventory"]
	require.Len(t, inventory, 3)
	assert.Equal(t, []string{"Name", "Code", "Category", "Stock", "Price", "Direct cost", "Supplier"}, inventory[0][:7])
	assert.Equal(t, "T-Shirt", inventory[1][0])
	assert.Equal(t, "7", inventory[1][3])
	assert.Equal(t, "Cap", inventory[2][0])

	sales := sheets["Sales"]
	require.Len(t, sales, 2)
	assert.Equal(t, "2026-10-18", sales[1][0])
	assert.Equal(t, "3", sales[1][2])
	assert.Equal(t, "Ana", sales[1][3])

	require.NotEmpty(t, sheets["Suppliers"])
	assert.Equal(t, "Name", sheets["Suppliers"][0][0])
}

func TestWriteWorkbookTruncatesSheetNames(t *testing.T) {
	long := strings.Repeat("Quarterly", 5)
	data, err := WriteWorkbook([]Sheet{
		{Name: long, Rows: []contactRow{{Name: "Ana"}}},
		{Name: "Short", Rows: []contactRow{}},
	})
	require.NoError(t, err)

	sheets, err := ReadWorkbook(data)
	require.NoError(t, err)
	for name := range sheets {
		assert.LessOrEqual(t, len([]rune(name)), 30)
	}
	assert.Contains(t, sheets, long[:30])
	assert.Contains(t, sheets, "Short")
}

func TestWriteWorkbookRejectsNonSlice(t *testing.T) {
	_, err := WriteWorkbook([]Sheet{{Name: "Bad", Rows: 42}})
	assert.Error(t, err)

	_, err = WriteWorkbook(nil)
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Inventory", SheetName("Inventory"))
	assert.Equal(t, strings.Repeat("é", 30), SheetName(strings.Repeat("é", 40)))
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", cellName(0, 1))
	assert.Equal(t, "Z3", cellName(25, 3))
	assert.Equal(t, "AA10", cellName(26, 10))
	assert.Equal(t, "AZ2", cellName(51, 2))
}

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, sampleSnapshot(), CollectionExpenses); err != nil {
		t.Fatalf("csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}
	if records[0][1] != "Type" || records[1][1] != "Marketing" || records[1][3] != "flyers" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestExportKeepsExactAmounts(t *testing.T) {
	price := decimal.RequireFromString("12345678901234567.89")
	amount := decimal.RequireFromString("0.10000000000000000001")
	snap := ledger.Snapshot{
		Products: []ledger.Product{{Name: "Gold", Stock: 1, Price: price, DirectCost: decimal.Zero}},
		Sales: []ledger.Sale{{
			Date:      time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
			Product:   "Gold",
			Quantity:  3,
			SalePrice: price,
		}},
		Expenses: []ledger.Expense{{Date: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), Type: ledger.ExpenseOther, Amount: amount}},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, snap, CollectionSales))
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "12345678901234567.89", records[1][5])
	assert.Equal(t, "37037036703703703.67", records[1][6])

	buf.Reset()
	require.NoError(t, WriteCSV(buf, snap, CollectionExpenses))
	records, err = csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "0.10000000000000000001", records[1][2])

	data, err := Workbook(snap)
	require.NoError(t, err)
	sheets, err := ReadWorkbook(data)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567.89", sheets["Inventory"][1][4])
	assert.Equal(t, "37037036703703703.67", sheets["Sales"][1][6])
	assert.Equal(t, "0.10000000000000000001", sheets["Expenses"][1][2])
}

func TestWriteCSVUnknownCollection(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, sampleSnapshot(), "payroll")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestDownloadEndpoints(t *testing.T) {
	book := ledger.NewStore(ledger.DefaultLowStockThreshold)
	h := NewHandler(nil, nil)
	h.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ledger.ContextWithStore(r.Context(), book)))
		})
	})
	router.Route("/export", h.MountRoutes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/workbook.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ledger-2026-10-18.xlsx"`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/inventory.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="inventory-2026-10-18.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Name,Code,Category,Stock"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/payroll.csv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
