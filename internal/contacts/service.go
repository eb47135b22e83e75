package contacts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ContactInput describes a client or supplier entry.
type ContactInput struct {
	Name    string `form:"name" validate:"required,max=200"`
	Contact string `form:"contact" validate:"max=200"`
	Notes   string `form:"notes" validate:"max=1000"`
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

// Service keeps the client and supplier directories.
type Service struct {
	metrics MetricsPort
}

// NewService builds Service. metrics may be nil.
func NewService(metrics MetricsPort) *Service {
	return &Service{metrics: metrics}
}

// AddClient appends a client.
func (s *Service) AddClient(ctx context.Context, book LedgerPort, input ContactInput) (ledger.Contact, error) {
	return s.add(ctx, book, ledger.ContactClient, input)
}

// AddSupplier appends a supplier.
func (s *Service) AddSupplier(ctx context.Context, book LedgerPort, input ContactInput) (ledger.Contact, error) {
	return s.add(ctx, book, ledger.ContactSupplier, input)
}

// Add appends a contact of the given kind.
func (s *Service) Add(ctx context.Context, book LedgerPort, kind ledger.ContactKind, input ContactInput) (ledger.Contact, error) {
	return s.add(ctx, book, kind, input)
}

func (s *Service) add(ctx context.Context, book LedgerPort, kind ledger.ContactKind, input ContactInput) (ledger.Contact, error) {
	operation := string(kind) + ".add"
	if !kind.Valid() {
		err := &ledger.ValidationError{Fields: map[string]string{"kind": "is not a known contact kind"}}
		s.record(operation, err)
		return ledger.Contact{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Contact = strings.TrimSpace(input.Contact)
	input.Notes = strings.TrimSpace(input.Notes)
	if err := ledger.Validate(input); err != nil {
		s.record(operation, err)
		return ledger.Contact{}, err
	}
	contact := ledger.Contact{
		ID:      uuid.NewString(),
		Kind:    kind,
		Name:    input.Name,
		Contact: input.Contact,
		Notes:   input.Notes,
	}
	err := book.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		tx.InsertContact(contact)
		return nil
	})
	s.record(operation, err)
	if err != nil {
		return ledger.Contact{}, err
	}
	return contact, nil
}

// SearchClients filters clients by query, ignoring case.
func (s *Service) SearchClients(book LedgerPort, query string) []ledger.Contact {
	return filter(book.Snapshot().Clients, query)
}

// SearchSuppliers filters suppliers by query, ignoring case.
func (s *Service) SearchSuppliers(book LedgerPort, query string) []ledger.Contact {
	return filter(book.Snapshot().Suppliers, query)
}

// Search filters the contacts of kind by query.
func (s *Service) Search(book LedgerPort, kind ledger.ContactKind, query string) []ledger.Contact {
	if kind == ledger.ContactSupplier {
		return s.SearchSuppliers(book, query)
	}
	return s.SearchClients(book, query)
}

func filter(contacts []ledger.Contact, query string) []ledger.Contact {
	m := ledger.NewMatcher(query)
	if m.Empty() {
		return contacts
	}
	out := make([]ledger.Contact, 0, len(contacts))
	for _, c := range contacts {
		if m.Match(c.Name, c.Contact, c.Notes) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOperation(operation, ledger.Outcome(err))
}
