package reports

import (
	"time"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// LedgerPort exposes the read side of a session ledger.
type LedgerPort interface {
	Snapshot() ledger.Snapshot
}

// MetricsPort records operation outcomes.
type MetricsPort interface {
	RecordOperation(operation, outcome string)
}

// Service builds reports from a ledger snapshot.
type Service struct {
	metrics MetricsPort
}

// NewService builds Service. metrics may be nil.
func NewService(metrics MetricsPort) *Service {
	return &Service{metrics: metrics}
}

// IncomeStatement computes the income statement for [from, to].
func (s *Service) IncomeStatement(book LedgerPort, from, to time.Time) (IncomeStatement, error) {
	stmt, err := BuildIncomeStatement(book.Snapshot(), from, to)
	if s.metrics != nil {
		s.metrics.RecordOperation("report.income_statement", ledger.Outcome(err))
	}
	return stmt, err
}

// DefaultRange is the first day of the month containing now through now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	to := ledger.CivilDate(now)
	return to.AddDate(0, 0, 1-to.Day()), to
}
