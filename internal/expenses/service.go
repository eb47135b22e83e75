package expenses

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ExpenseInput describes an outgoing payment to record.
type ExpenseInput struct {
	Date   time.Time
	Type   string `form:"type"`
	Amount decimal.Decimal
	Note   string `form:"note" validate:"max=500"`
}

// LedgerPort abstracts the session ledger used by the service.
type LedgerPort interface {
	WithTx(ctx context.Context, fn func(context.Context, *ledger.Tx) error) error
	Snapshot() ledger.Snapshot
}

// MetricsPort records operation outcomes.
type MetricsPort interface {
	RecordOperation(operation, outcome string)
}

// Service records expenses.
type Service struct {
	metrics MetricsPort
	now     func() time.Time
}

// NewService builds Service. metrics may be nil.
func NewService(metrics MetricsPort) *Service {
	return &Service{metrics: metrics, now: time.Now}
}

// AddExpense appends an expense. The type must be one of ledger.ExpenseTypes;
// negative amounts are stored as zero.
func (s *Service) AddExpense(ctx context.Context, book LedgerPort, input ExpenseInput) (ledger.Expense, error) {
	expense, err := s.addExpense(ctx, book, input)
	if s.metrics != nil {
		s.metrics.RecordOperation("expense.add", ledger.Outcome(err))
	}
	return expense, err
}

func (s *Service) addExpense(ctx context.Context, book LedgerPort, input ExpenseInput) (ledger.Expense, error) {
	input.Note = strings.TrimSpace(input.Note)
	expenseType, err := ledger.ParseExpenseType(input.Type)
	if err != nil {
		return ledger.Expense{}, err
	}
	if err := ledger.Validate(input); err != nil {
		return ledger.Expense{}, err
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	expense := ledger.Expense{
		ID:     uuid.NewString(),
		Date:   ledger.CivilDate(date),
		Type:   expenseType,
		Amount: ledger.NonNegative(input.Amount),
		Note:   input.Note,
	}
	err = book.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		tx.InsertExpense(expense)
		return nil
	})
	if err != nil {
		return ledger.Expense{}, err
	}
	return expense, nil
}

// Search returns expenses whose rendered fields contain query, ignoring case.
func (s *Service) Search(book LedgerPort, query string) []ledger.Expense {
	expenses := book.Snapshot().Expenses
	m := ledger.NewMatcher(query)
	if m.Empty() {
		return expenses
	}
	out := make([]ledger.Expense, 0, len(expenses))
	for _, e := range expenses {
		if m.Match(e.Date.Format(ledger.DateLayout), string(e.Type), e.Amount.String(), e.Note) {
			out = append(out, e)
		}
	}
	return out
}
