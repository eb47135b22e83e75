package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical rendering of ledger calendar dates.
const DateLayout = "2006-01-02"

// DefaultLowStockThreshold applies when a session has not chosen its own.
const DefaultLowStockThreshold = 5

// Product is one inventory entry.
type Product struct {
	ID         string
	Name       string
	Code       string
	Category   string
	Stock      int
	Price      decimal.Decimal
	DirectCost decimal.Decimal
	Supplier   string
	CreatedAt  time.Time
}

// Sale is a single product line sold to a buyer.
type Sale struct {
	ID        string
	Date      time.Time
	ProductID string
	Product   string
	Quantity  int
	Buyer     string
	Size      string
	SalePrice decimal.Decimal
}

// LineTotal returns Quantity * SalePrice.
func (s Sale) LineTotal() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// ExpenseType enumerates the closed set of expense categories.
type ExpenseType string

const (
	ExpenseMarketing  ExpenseType = "Marketing"
	ExpenseShipping   ExpenseType = "Shipping"
	ExpenseDirectCost ExpenseType = "Direct product cost"
	ExpenseOther      ExpenseType = "Other"
)

// ExpenseTypes lists the accepted expense types in display order.
func ExpenseTypes() []ExpenseType {
	return []ExpenseType{ExpenseMarketing, ExpenseShipping, ExpenseDirectCost, ExpenseOther}
}

// ParseExpenseType resolves a label case-insensitively against the closed set.
func ParseExpenseType(value string) (ExpenseType, error) {
	trimmed := strings.TrimSpace(value)
	for _, t := range ExpenseTypes() {
		if strings.EqualFold(trimmed, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidExpenseType
}

// Expense is an outgoing payment.
type Expense struct {
	ID     string
	Date   time.Time
	Type   ExpenseType
	Amount decimal.Decimal
	Note   string
}

// ContactKind separates clients from suppliers.
type ContactKind string

const (
	ContactClient   ContactKind = "client"
	ContactSupplier ContactKind = "supplier"
)

// Valid reports whether k is a known kind.
func (k ContactKind) Valid() bool {
	return k == ContactClient || k == ContactSupplier
}

// Contact is a client or supplier directory entry.
type Contact struct {
	ID      string
	Kind    ContactKind
	Name    string
	Contact string
	Notes   string
}

// Snapshot is a point-in-time copy of every collection in a Store.
type Snapshot struct {
	Products          []Product
	Sales             []Sale
	Expenses          []Expense
	Clients           []Contact
	Suppliers         []Contact
	LowStockThreshold int
}

// CivilDate truncates t to its calendar date at UTC midnight.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
