package export

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ErrUnknownCollection is returned for a collection name that cannot be exported.
var ErrUnknownCollection = errors.New("export: unknown collection")

// maxSheetName is the longest sheet name written to a workbook.
const maxSheetName = 30

// Collection names accepted by Rows and the CSV endpoint.
const (
	CollectionInventory = "inventory"
	CollectionSales     = "sales"
	CollectionExpenses  = "expenses"
	CollectionClients   = "clients"
	CollectionSuppliers = "suppliers"
)

type collection struct {
	key   string
	sheet string
}

var collections = []collection{
	{CollectionInventory, "Inventory"},
	{CollectionSales, "Sales"},
	{CollectionExpenses, "Expenses"},
	{CollectionClients, "Clients"},
	{CollectionSuppliers, "Suppliers"},
}

// Collections lists the exportable collection names in workbook order.
func Collections() []string {
	out := make([]string, 0, len(collections))
	for _, c := range collections {
		out = append(out, c.key)
	}
	return out
}

// money is an exact decimal amount in its canonical text form. Workbooks store
// it as a numeric cell without passing through float64.
type money string

func moneyOf(d decimal.Decimal) money {
	return money(d.String())
}

type productRow struct {
	Name       string `csv:"Name"`
	Code       string `csv:"Code"`
	Category   string `csv:"Category"`
	Stock      int    `csv:"Stock"`
	Price      money  `csv:"Price"`
	DirectCost money  `csv:"Direct cost"`
	Supplier   string `csv:"Supplier"`
}

type saleRow struct {
	Date      string `csv:"Date"`
	Product   string `csv:"Product"`
	Quantity  int    `csv:"Quantity"`
	Buyer     string `csv:"Buyer"`
	Size      string `csv:"Size"`
	SalePrice money  `csv:"Sale price"`
	Total     money  `csv:"Total"`
}

type expenseRow struct {
	Date   string `csv:"Date"`
	Type   string `csv:"Type"`
	Amount money  `csv:"Amount"`
	Note   string `csv:"Note"`
}

type contactRow struct {
	Name    string `csv:"Name"`
	Contact string `csv:"Contact"`
	Notes   string `csv:"Notes"`
}

// Rows converts one collection of snap into a slice of csv-tagged row structs.
func Rows(snap ledger.Snapshot, name string) (any, error) {
	switch name {
	case CollectionInventory:
		rows := make([]productRow, 0, len(snap.Products))
		for _, p := range snap.Products {
			rows = append(rows, productRow{
				Name:       p.Name,
				Code:       p.Code,
				Category:   p.Category,
				Stock:      p.Stock,
				Price:      moneyOf(p.Price),
				DirectCost: moneyOf(p.DirectCost),
				Supplier:   p.Supplier,
			})
		}
		return rows, nil
	case CollectionSales:
		rows := make([]saleRow, 0, len(snap.Sales))
		for _, s := range snap.Sales {
			rows = append(rows, saleRow{
				Date:      s.Date.Format(ledger.DateLayout),
				Product:   s.Product,
				Quantity:  s.Quantity,
				Buyer:     s.Buyer,
				Size:      s.Size,
				SalePrice: moneyOf(s.SalePrice),
				Total:     moneyOf(s.LineTotal()),
			})
		}
		return rows, nil
	case CollectionExpenses:
		rows := make([]expenseRow, 0, len(snap.Expenses))
		for _, e := range snap.Expenses {
			rows = append(rows, expenseRow{
				Date:   e.Date.Format(ledger.DateLayout),
				Type:   string(e.Type),
				Amount: moneyOf(e.Amount),
				Note:   e.Note,
			})
		}
		return rows, nil
	case CollectionClients:
		return contactRows(snap.Clients), nil
	case CollectionSuppliers:
		return contactRows(snap.Suppliers), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
}

func contactRows(contacts []ledger.Contact) []contactRow {
	rows := make([]contactRow, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, contactRow{Name: c.Name, Contact: c.Contact, Notes: c.Notes})
	}
	return rows
}

// SheetName truncates name to the workbook limit, counting characters.
func SheetName(name string) string {
	runes := []rune(name)
	if len(runes) > maxSheetName {
		return string(runes[:maxSheetName])
	}
	return name
}
