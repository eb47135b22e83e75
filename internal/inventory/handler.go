package inventory

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showInventory)
	r.Post("/products", h.handleAddProduct)
	r.Post("/threshold", h.handleThreshold)
}

type productForm struct {
	Name       string
	Code       string
	Category   string
	Stock      string
	Price      string
	DirectCost string
	Supplier   string
}

type inventoryPageData struct {
	Query    string
	Products []ledger.Product
	LowStock LowStockReport
	Form     productForm
	Errors   map[string]string
}

func (h *Handler) showInventory(w http.ResponseWriter, r *http.Request) {
	h.renderInventory(w, r, productForm{Stock: "0", Price: "0", DirectCost: "0"}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("add product", slog.Any("error", shared.ErrLedgerMissing))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, input, errors := parseProductForm(r)
	if len(errors) == 0 {
		product, err := h.service.AddProduct(r.Context(), book, input)
		if err == nil {
			h.logger.Info("product added", slog.String("product_id", product.ID), slog.String("name", product.Name), slog.Int("stock", product.Stock))
			h.redirectWithFlash(w, r, "/inventory", shared.FlashSuccess, "Product added.")
			return
		}
		h.logger.Warn("add product rejected", slog.Any("error", err))
		for field, msg := range ledger.FieldErrors(err) {
			errors[field] = msg
		}
		errors["general"] = shared.UserSafeMessage(err)
	}
	h.renderInventory(w, r, form, errors, http.StatusBadRequest)
}

func (h *Handler) handleThreshold(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	threshold, err := shared.FormInt(r, "threshold")
	if err == nil {
		err = h.service.SetLowStockThreshold(r.Context(), book, threshold)
	}
	if err != nil {
		flash := shared.FlashFor(err)
		h.redirectWithFlash(w, r, "/inventory", flash.Kind, flash.Message)
		return
	}
	h.redirectWithFlash(w, r, "/inventory", shared.FlashSuccess, "Low stock threshold set to "+strconv.Itoa(threshold)+".")
}

func (h *Handler) renderInventory(w http.ResponseWriter, r *http.Request, form productForm, errors map[string]string, status int) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := inventoryPageData{
		Query:    query,
		Products: h.service.Search(book, query),
		LowStock: h.service.LowStock(book),
		Form:     form,
		Errors:   errors,
	}
	h.render(w, r, "pages/inventory/index.html", "Inventory", data, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: title, CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", name))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func parseProductForm(r *http.Request) (productForm, ProductInput, map[string]string) {
	errors := make(map[string]string)
	form := productForm{
		Name:       r.PostFormValue("name"),
		Code:       r.PostFormValue("code"),
		Category:   r.PostFormValue("category"),
		Stock:      r.PostFormValue("stock"),
		Price:      r.PostFormValue("price"),
		DirectCost: r.PostFormValue("direct_cost"),
		Supplier:   r.PostFormValue("supplier"),
	}
	input := ProductInput{Name: form.Name, Code: form.Code, Category: form.Category, Supplier: form.Supplier}
	var err error
	if input.Stock, err = shared.FormInt(r, "stock"); err != nil {
		errors["stock"] = "Stock must be a whole number"
	}
	if input.Price, err = shared.FormDecimal(r, "price"); err != nil {
		errors["price"] = "Price must be a number"
	}
	if input.DirectCost, err = shared.FormDecimal(r, "direct_cost"); err != nil {
		errors["direct_cost"] = "Direct cost must be a number"
	}
	return form, input, errors
}
