package ledger

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Store holds the collections of one session ledger in memory. Operations are
// serialised; WithTx applies all staged mutations or none of them.
type Store struct {
	mu        sync.Mutex
	products  []Product
	sales     []Sale
	expenses  []Expense
	contacts  []Contact
	threshold int
}

// NewStore returns an empty ledger using threshold for low stock checks.
func NewStore(threshold int) *Store {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Store{threshold: threshold}
}

// Tx is a staged view of a Store handed to WithTx callbacks.
type Tx struct {
	products  []Product
	sales     []Sale
	expenses  []Expense
	contacts  []Contact
	threshold int
}

// WithTx runs fn against a staged copy of the store and commits the copy only
// when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context, *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{
		products:  slices.Clone(s.products),
		sales:     s.sales[:len(s.sales):len(s.sales)],
		expenses:  s.expenses[:len(s.expenses):len(s.expenses)],
		contacts:  s.contacts[:len(s.contacts):len(s.contacts)],
		threshold: s.threshold,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.products = tx.products
	s.sales = tx.sales
	s.expenses = tx.expenses
	s.contacts = tx.contacts
	s.threshold = tx.threshold
	return nil
}

// Snapshot copies every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Products:          slices.Clone(s.products),
		Sales:             slices.Clone(s.sales),
		Expenses:          slices.Clone(s.expenses),
		LowStockThreshold: s.threshold,
	}
	for _, c := range s.contacts {
		switch c.Kind {
		case ContactClient:
			snap.Clients = append(snap.Clients, c)
		case ContactSupplier:
			snap.Suppliers = append(snap.Suppliers, c)
		}
	}
	return snap
}

// Products returns the staged inventory.
func (tx *Tx) Products() []Product {
	return slices.Clone(tx.products)
}

// ProductByName returns the product whose trimmed name equals name exactly.
func (tx *Tx) ProductByName(name string) (Product, error) {
	idx := tx.indexByName(strings.TrimSpace(name), false)
	if idx < 0 {
		return Product{}, ErrProductNotFound
	}
	return tx.products[idx], nil
}

// HasProductName reports whether name is taken, ignoring case.
func (tx *Tx) HasProductName(name string) bool {
	return tx.indexByName(strings.TrimSpace(name), true) >= 0
}

func (tx *Tx) indexByName(name string, fold bool) int {
	for i, p := range tx.products {
		if p.Name == name || (fold && strings.EqualFold(p.Name, name)) {
			return i
		}
	}
	return -1
}

// InsertProduct appends p.
func (tx *Tx) InsertProduct(p Product) {
	tx.products = append(tx.products, p)
}

// SetStock overwrites the stock of the product with id.
func (tx *Tx) SetStock(id string, stock int) error {
	for i := range tx.products {
		if tx.products[i].ID == id {
			tx.products[i].Stock = stock
			return nil
		}
	}
	return ErrProductNotFound
}

// InsertSale appends s.
func (tx *Tx) InsertSale(s Sale) {
	tx.sales = append(tx.sales, s)
}

// InsertExpense appends e.
func (tx *Tx) InsertExpense(e Expense) {
	tx.expenses = append(tx.expenses, e)
}

// InsertContact appends c.
func (tx *Tx) InsertContact(c Contact) {
	tx.contacts = append(tx.contacts, c)
}

// LowStockThreshold returns the staged threshold.
func (tx *Tx) LowStockThreshold() int {
	return tx.threshold
}

// SetLowStockThreshold changes the threshold.
func (tx *Tx) SetLowStockThreshold(n int) error {
	if n < 0 {
		return ErrInvalidThreshold
	}
	tx.threshold = n
	return nil
}
