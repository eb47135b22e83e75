package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

// Handler wires HTTP endpoints for expenses.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler constructs expenses handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, now: time.Now}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showExpenses)
	r.Post("/", h.handleAdd)
}

type expenseForm struct {
	Date   string
	Type   string
	Amount string
	Note   string
}

type expensesPageData struct {
	Query    string
	Expenses []ledger.Expense
	Form     expenseForm
	Errors   map[string]string
}

func (h *Handler) showExpenses(w http.ResponseWriter, r *http.Request) {
	form := expenseForm{Date: h.now().Format(ledger.DateLayout), Type: string(ledger.ExpenseMarketing), Amount: "0"}
	h.renderExpenses(w, r, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("add expense", slog.Any("error", shared.ErrLedgerMissing))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := expenseForm{
		Date:   r.PostFormValue("date"),
		Type:   r.PostFormValue("type"),
		Amount: r.PostFormValue("amount"),
		Note:   r.PostFormValue("note"),
	}
	fieldErrs := make(map[string]string)
	input := ExpenseInput{Type: form.Type, Note: form.Note}
	var err error
	if input.Date, err = shared.ParseDate(form.Date, h.now()); err != nil {
		fieldErrs["date"] = "Date is not valid"
	}
	if input.Amount, err = shared.FormDecimal(r, "amount"); err != nil {
		fieldErrs["amount"] = "Amount must be a number"
	}
	if len(fieldErrs) == 0 {
		expense, err := h.service.AddExpense(r.Context(), book, input)
		if err == nil {
			h.logger.Info("expense added",
				slog.String("expense_id", expense.ID),
				slog.String("type", string(expense.Type)),
				slog.String("amount", expense.Amount.String()))
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Expense recorded."})
			}
			http.Redirect(w, r, "/expenses", http.StatusSeeOther)
			return
		}
		h.logger.Warn("add expense rejected", slog.Any("error", err))
		if errors.Is(err, ledger.ErrInvalidExpenseType) {
			fieldErrs["type"] = "Choose one of the listed types"
		}
		for field, msg := range ledger.FieldErrors(err) {
			fieldErrs[field] = msg
		}
		fieldErrs["general"] = shared.UserSafeMessage(err)
	}
	h.renderExpenses(w, r, form, fieldErrs, http.StatusBadRequest)
}

func (h *Handler) renderExpenses(w http.ResponseWriter, r *http.Request, form expenseForm, errors map[string]string, status int) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := expensesPageData{
		Query:    query,
		Expenses: h.service.Search(book, query),
		Form:     form,
		Errors:   errors,
	}
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Expenses", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/expenses/index.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/expenses/index.html"))
	}
}
