package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// SaleInput describes one sale registration.
type SaleInput struct {
	Date      time.Time
	Product   string `form:"product" validate:"max=200"`
	Quantity  int
	Buyer     string `form:"buyer" validate:"max=200"`
	Size      string `form:"size" validate:"max=50"`
	SalePrice decimal.Decimal
}

// LineInput is one item of a multi-line sale.
type LineInput struct {
	Product   string
	Quantity  int
	Size      string
	SalePrice decimal.Decimal
}

// BatchInput groups line items sold to the same buyer on the same date.
type BatchInput struct {
	Date  time.Time
	Buyer string
	Lines []LineInput
}

// LineResult reports the outcome of one batch line. Line is 1-based.
type LineResult struct {
	Line int
	Sale ledger.Sale
	Err  error
}

// BatchResult collects per-line outcomes in input order.
type BatchResult struct {
	Lines []LineResult
}

// Succeeded returns the number of lines that produced a sale.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, l := range r.Lines {
		if l.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the lines that were rejected.
func (r BatchResult) Failed() []LineResult {
	var out []LineResult
	for _, l := range r.Lines {
		if l.Err != nil {
			out = append(out, l)
		}
	}
	return out
}
