package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

// Handler serves report pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler constructs reports handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, now: time.Now}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/income-statement", h.showIncomeStatement)
	r.Get("/income-statement.json", h.incomeStatementJSON)
}

// IncomeStatementViewModel holds SSR data for the income statement.
type IncomeStatementViewModel struct {
	FilterFrom string
	FilterTo   string
	Report     *IncomeStatement
	Error      string
}

func (h *Handler) showIncomeStatement(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("income statement", slog.Any("error", shared.ErrLedgerMissing))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	vm := IncomeStatementViewModel{
		FilterFrom: r.URL.Query().Get("from"),
		FilterTo:   r.URL.Query().Get("to"),
	}
	status := http.StatusOK
	from, to, err := h.parseRange(r)
	if err == nil {
		var stmt IncomeStatement
		stmt, err = h.service.IncomeStatement(book, from, to)
		if err == nil {
			vm.Report = &stmt
			vm.FilterFrom = from.Format(ledger.DateLayout)
			vm.FilterTo = to.Format(ledger.DateLayout)
		}
	}
	if err != nil {
		status = http.StatusBadRequest
		vm.Error = shared.UserSafeMessage(err)
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data := view.TemplateData{Title: "Income statement", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: vm}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/reports/income_statement.html", data); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/reports/income_statement.html"))
	}
}

func (h *Handler) incomeStatementJSON(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		httpx.RespondError(w, shared.ErrLedgerMissing)
		return
	}
	from, to, err := h.parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
		return
	}
	stmt, err := h.service.IncomeStatement(book, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	defFrom, defTo := DefaultRange(h.now())
	from, err := shared.ParseDate(r.URL.Query().Get("from"), defFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"), defTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
