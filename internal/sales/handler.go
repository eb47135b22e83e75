package sales

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

// maxLines caps the number of line items accepted from one form post.
const maxLines = 20

// defaultLines is the number of empty rows the form shows.
const defaultLines = 3

// Handler wires HTTP endpoints for the sales module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler constructs sales handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, now: time.Now}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showSales)
	r.Post("/", h.handleRegister)
}

type lineForm struct {
	Product   string
	Quantity  string
	Size      string
	SalePrice string
}

type saleForm struct {
	Date  string
	Buyer string
	Lines []lineForm
}

type salesPageData struct {
	Query    string
	Products []ledger.Product
	Sales    []ledger.Sale
	Form     saleForm
	Errors   map[string]string
}

func (h *Handler) showSales(w http.ResponseWriter, r *http.Request) {
	form := saleForm{
		Date:  h.now().Format(ledger.DateLayout),
		Lines: make([]lineForm, defaultLines),
	}
	h.renderSales(w, r, form, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("register sale", slog.Any("error", shared.ErrLedgerMissing))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, batch, errors := h.parseSaleForm(r)
	if len(errors) > 0 {
		h.renderSales(w, r, form, errors, http.StatusBadRequest)
		return
	}
	result, err := h.service.RegisterBatch(r.Context(), book, batch)
	if err != nil {
		h.logger.Warn("sale batch rejected", slog.Any("error", err))
		errors["general"] = shared.UserSafeMessage(err)
		for field, msg := range ledger.FieldErrors(err) {
			errors[field] = msg
		}
		h.renderSales(w, r, form, errors, http.StatusBadRequest)
		return
	}
	for _, line := range result.Lines {
		if line.Err != nil {
			h.logger.Warn("sale line rejected", slog.Int("line", line.Line), slog.Any("error", line.Err))
			continue
		}
		h.logger.Info("sale registered",
			slog.String("sale_id", line.Sale.ID),
			slog.String("product", line.Sale.Product),
			slog.Int("quantity", line.Sale.Quantity))
	}
	flash := summarize(result)
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(flash)
	}
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

// summarize builds one flash for a batch: success when every line went
// through, otherwise a warning or error listing the rejected lines.
func summarize(result BatchResult) shared.FlashMessage {
	total := len(result.Lines)
	ok := result.Succeeded()
	if ok == total {
		if total == 1 {
			return shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Sale registered."}
		}
		return shared.FlashMessage{Kind: shared.FlashSuccess, Message: fmt.Sprintf("Registered %d sales.", total)}
	}
	failed := result.Failed()
	kind := shared.FlashWarning
	if ok == 0 && !anyWarning(failed) {
		kind = shared.FlashError
	}
	var b strings.Builder
	if total == 1 {
		b.WriteString(shared.UserSafeMessage(failed[0].Err))
		return shared.FlashMessage{Kind: kind, Message: b.String()}
	}
	fmt.Fprintf(&b, "Registered %d of %d lines.", ok, total)
	for _, l := range failed {
		fmt.Fprintf(&b, " Line %d: %s", l.Line, shared.UserSafeMessage(l.Err))
	}
	return shared.FlashMessage{Kind: kind, Message: b.String()}
}

func anyWarning(lines []LineResult) bool {
	for _, l := range lines {
		if ledger.IsWarning(l.Err) {
			return true
		}
	}
	return false
}

func (h *Handler) renderSales(w http.ResponseWriter, r *http.Request, form saleForm, errors map[string]string, status int) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := salesPageData{
		Query:    query,
		Products: h.service.Products(book),
		Sales:    h.service.Search(book, query),
		Form:     form,
		Errors:   errors,
	}
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Sales", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/sales/index.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/sales/index.html"))
	}
}

// parseSaleForm reads the header fields and the numbered line rows
// (product_N, quantity_N, size_N, sale_price_N). Rows without product and
// quantity are skipped.
func (h *Handler) parseSaleForm(r *http.Request) (saleForm, BatchInput, map[string]string) {
	errors := make(map[string]string)
	form := saleForm{
		Date:  r.PostFormValue("date"),
		Buyer: r.PostFormValue("buyer"),
	}
	batch := BatchInput{Buyer: form.Buyer}
	var err error
	if batch.Date, err = shared.ParseDate(form.Date, h.now()); err != nil {
		errors["date"] = "Date is not valid"
	}

	count, err := shared.FormInt(r, "lines")
	if err != nil || count <= 0 {
		count = defaultLines
	}
	if count > maxLines {
		count = maxLines
	}
	for i := 1; i <= count; i++ {
		suffix := "_" + strconv.Itoa(i)
		line := lineForm{
			Product:   r.PostFormValue("product" + suffix),
			Quantity:  r.PostFormValue("quantity" + suffix),
			Size:      r.PostFormValue("size" + suffix),
			SalePrice: r.PostFormValue("sale_price" + suffix),
		}
		form.Lines = append(form.Lines, line)
		if strings.TrimSpace(line.Product) == "" && strings.TrimSpace(line.Quantity) == "" {
			continue
		}
		input := LineInput{Product: line.Product, Size: line.Size}
		if input.Quantity, err = shared.FormInt(r, "quantity"+suffix); err != nil {
			errors["quantity"+suffix] = "Quantity must be a whole number"
		}
		if input.SalePrice, err = shared.FormDecimal(r, "sale_price"+suffix); err != nil {
			errors["sale_price"+suffix] = "Price must be a number"
		}
		batch.Lines = append(batch.Lines, input)
	}
	return form, batch, errors
}
