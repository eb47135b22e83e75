package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// LedgerPort abstracts the session ledger used by the service.
type LedgerPort interface {
	WithTx(ctx context.Context, fn func(context.Context, *ledger.Tx) error) error
	Snapshot() ledger.Snapshot
}

// MetricsPort records operation outcomes.
type MetricsPort interface {
	RecordOperation(operation, outcome string)
}

// Service coordinates inventory operations.
type Service struct {
	metrics MetricsPort
	now     func() time.Time
}

// NewService builds Service. metrics may be nil.
func NewService(metrics MetricsPort) *Service {
	return &Service{metrics: metrics, now: time.Now}
}

// AddProduct appends a product after trimming text, clamping numbers to be
// non-negative and rejecting empty or duplicate names.
func (s *Service) AddProduct(ctx context.Context, book LedgerPort, input ProductInput) (ledger.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.Category = strings.TrimSpace(input.Category)
	input.Supplier = strings.TrimSpace(input.Supplier)
	if input.Stock < 0 {
		input.Stock = 0
	}
	if err := ledger.Validate(input); err != nil {
		s.record("product.add", err)
		return ledger.Product{}, err
	}
	product := ledger.Product{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Code:       input.Code,
		Category:   input.Category,
		Stock:      input.Stock,
		Price:      ledger.NonNegative(input.Price),
		DirectCost: ledger.NonNegative(input.DirectCost),
		Supplier:   input.Supplier,
		CreatedAt:  s.now().UTC(),
	}
	err := book.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		if tx.HasProductName(product.Name) {
			return fmt.Errorf("%w: %q", ledger.ErrDuplicateProduct, product.Name)
		}
		tx.InsertProduct(product)
		return nil
	})
	s.record("product.add", err)
	if err != nil {
		return ledger.Product{}, err
	}
	return product, nil
}

// Search returns products whose name, code, category or supplier contains
// query, ignoring case. A blank query returns the whole inventory.
func (s *Service) Search(book LedgerPort, query string) []ledger.Product {
	products := book.Snapshot().Products
	m := ledger.NewMatcher(query)
	if m.Empty() {
		return products
	}
	out := make([]ledger.Product, 0, len(products))
	for _, p := range products {
		if m.Match(p.Name, p.Code, p.Category, p.Supplier) {
			out = append(out, p)
		}
	}
	return out
}

// LowStock lists products whose stock is at or below the session threshold.
func (s *Service) LowStock(book LedgerPort) LowStockReport {
	snap := book.Snapshot()
	report := LowStockReport{Threshold: snap.LowStockThreshold}
	for _, p := range snap.Products {
		if p.Stock <= snap.LowStockThreshold {
			report.Products = append(report.Products, p)
		}
	}
	return report
}

// SetLowStockThreshold changes the threshold for this session.
func (s *Service) SetLowStockThreshold(ctx context.Context, book LedgerPort, threshold int) error {
	err := book.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		return tx.SetLowStockThreshold(threshold)
	})
	s.record("inventory.threshold", err)
	return err
}

func (s *Service) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOperation(operation, ledger.Outcome(err))
}
