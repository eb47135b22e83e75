package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ExpenseLine is the subtotal of one expense type.
type ExpenseLine struct {
	Type   ledger.ExpenseType `json:"type"`
	Amount decimal.Decimal    `json:"amount"`
}

// IncomeStatement summarises revenue and expenses over an inclusive date range.
type IncomeStatement struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	Sales         []ledger.Sale    `json:"sales"`
	Expenses      []ledger.Expense `json:"expenses"`
	Revenue       decimal.Decimal  `json:"revenue"`
	TotalExpenses decimal.Decimal  `json:"expenses_total"`
	Net           decimal.Decimal  `json:"net"`
	ByType        []ExpenseLine    `json:"expenses_by_type"`
}

// BuildIncomeStatement filters sales and expenses to [from, to] by calendar
// date. Revenue sums Quantity * SalePrice per sale.
func BuildIncomeStatement(snap ledger.Snapshot, from, to time.Time) (IncomeStatement, error) {
	from = ledger.CivilDate(from)
	to = ledger.CivilDate(to)
	if from.After(to) {
		return IncomeStatement{}, ledger.ErrInvalidDateRange
	}
	stmt := IncomeStatement{
		From:          from,
		To:            to,
		Sales:         []ledger.Sale{},
		Expenses:      []ledger.Expense{},
		Revenue:       decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, sale := range snap.Sales {
		if !within(sale.Date, from, to) {
			continue
		}
		stmt.Sales = append(stmt.Sales, sale)
		stmt.Revenue = stmt.Revenue.Add(sale.LineTotal())
	}

	byType := make(map[ledger.ExpenseType]decimal.Decimal)
	for _, expense := range snap.Expenses {
		if !within(expense.Date, from, to) {
			continue
		}
		stmt.Expenses = append(stmt.Expenses, expense)
		stmt.TotalExpenses = stmt.TotalExpenses.Add(expense.Amount)
		byType[expense.Type] = byType[expense.Type].Add(expense.Amount)
	}
	for _, t := range ledger.ExpenseTypes() {
		if amount, ok := byType[t]; ok {
			stmt.ByType = append(stmt.ByType, ExpenseLine{Type: t, Amount: amount})
		}
	}
	stmt.Net = stmt.Revenue.Sub(stmt.TotalExpenses)
	return stmt, nil
}

func within(date, from, to time.Time) bool {
	d := ledger.CivilDate(date)
	return !d.Before(from) && !d.After(to)
}
