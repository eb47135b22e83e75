package sales

import (
	"context"
	"errors"
	"strconv"
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

// Service registers sales against the inventory.
type Service struct {
	metrics MetricsPort
	now     func() time.Time
}

// NewService builds Service. metrics may be nil.
func NewService(metrics MetricsPort) *Service {
	return &Service{metrics: metrics, now: time.Now}
}

// RegisterSale looks the product up by exact name, checks quantity and stock,
// then decrements stock and appends the sale in one step. Nothing changes when
// any check fails.
func (s *Service) RegisterSale(ctx context.Context, book LedgerPort, input SaleInput) (ledger.Sale, error) {
	sale, err := s.registerSale(ctx, book, input)
	s.record("sale.register", err)
	return sale, err
}

func (s *Service) registerSale(ctx context.Context, book LedgerPort, input SaleInput) (ledger.Sale, error) {
	input.Product = strings.TrimSpace(input.Product)
	input.Buyer = strings.TrimSpace(input.Buyer)
	input.Size = strings.TrimSpace(input.Size)
	if err := ledger.Validate(input); err != nil {
		return ledger.Sale{}, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	var sale ledger.Sale
	err := book.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		product, err := tx.ProductByName(input.Product)
		if err != nil {
			return err
		}
		if input.Quantity <= 0 {
			return ledger.ErrInvalidQuantity
		}
		if product.Stock < input.Quantity {
			return &ledger.InsufficientStockError{
				Product:   product.Name,
				Available: product.Stock,
				Requested: input.Quantity,
			}
		}
		if err := tx.SetStock(product.ID, product.Stock-input.Quantity); err != nil {
			return err
		}
		sale = ledger.Sale{
			ID:        uuid.NewString(),
			Date:      ledger.CivilDate(date),
			ProductID: product.ID,
			Product:   product.Name,
			Quantity:  input.Quantity,
			Buyer:     input.Buyer,
			Size:      input.Size,
			SalePrice: ledger.NonNegative(input.SalePrice),
		}
		tx.InsertSale(sale)
		return nil
	})
	if err != nil {
		return ledger.Sale{}, err
	}
	return sale, nil
}

// RegisterBatch registers every line in order. Each line succeeds or fails on
// its own; a failed line never undoes the lines before it.
func (s *Service) RegisterBatch(ctx context.Context, book LedgerPort, batch BatchInput) (BatchResult, error) {
	if len(batch.Lines) == 0 {
		err := &ledger.ValidationError{Fields: map[string]string{"lines": "at least one line is required"}}
		s.record("sale.batch", err)
		return BatchResult{}, err
	}
	result := BatchResult{Lines: make([]LineResult, 0, len(batch.Lines))}
	for i, line := range batch.Lines {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sale, err := s.RegisterSale(ctx, book, SaleInput{
			Date:      batch.Date,
			Product:   line.Product,
			Quantity:  line.Quantity,
			Buyer:     batch.Buyer,
			Size:      line.Size,
			SalePrice: line.SalePrice,
		})
		result.Lines = append(result.Lines, LineResult{Line: i + 1, Sale: sale, Err: err})
	}
	var batchErr error
	if result.Succeeded() == 0 {
		batchErr = errors.Join(lineErrors(result)...)
	}
	s.record("sale.batch", batchErr)
	return result, nil
}

// Search returns sales whose rendered fields contain query, ignoring case.
// A blank query returns every sale in insertion order.
func (s *Service) Search(book LedgerPort, query string) []ledger.Sale {
	sales := book.Snapshot().Sales
	m := ledger.NewMatcher(query)
	if m.Empty() {
		return sales
	}
	out := make([]ledger.Sale, 0, len(sales))
	for _, sale := range sales {
		if m.Match(renderFields(sale)...) {
			out = append(out, sale)
		}
	}
	return out
}

// Products lists the inventory for the sale form.
func (s *Service) Products(book LedgerPort) []ledger.Product {
	return book.Snapshot().Products
}

func renderFields(sale ledger.Sale) []string {
	return []string{
		sale.Date.Format(ledger.DateLayout),
		sale.Product,
		strconv.Itoa(sale.Quantity),
		sale.Buyer,
		sale.Size,
		sale.SalePrice.String(),
	}
}

func lineErrors(result BatchResult) []error {
	errs := make([]error, 0, len(result.Lines))
	for _, l := range result.Failed() {
		errs = append(errs, l.Err)
	}
	return errs
}

func (s *Service) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOperation(operation, ledger.Outcome(err))
}
