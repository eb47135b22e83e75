package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ProductInput describes a request to add a product to the inventory.
type ProductInput struct {
	Name       string `form:"name" validate:"required,max=200"`
	Code       string `form:"code" validate:"max=64"`
	Category   string `form:"category" validate:"max=100"`
	Stock      int    `form:"stock"`
	Price      decimal.Decimal
	DirectCost decimal.Decimal
	Supplier   string `form:"supplier" validate:"max=200"`
}

// LowStockReport lists products at or below the session threshold.
type LowStockReport struct {
	Threshold int
	Products  []ledger.Product
}
