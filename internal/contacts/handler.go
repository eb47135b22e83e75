package contacts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

// Handler wires HTTP endpoints for the client and supplier directories.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs contacts handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers contacts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/contacts/clients", http.StatusFound)
	})
	r.Get("/clients", h.show(ledger.ContactClient))
	r.Post("/clients", h.handleAdd(ledger.ContactClient))
	r.Get("/suppliers", h.show(ledger.ContactSupplier))
	r.Post("/suppliers", h.handleAdd(ledger.ContactSupplier))
}

type contactForm struct {
	Name    string
	Contact string
	Notes   string
}

type contactsPageData struct {
	Kind     ledger.ContactKind
	Heading  string
	Action   string
	Query    string
	Contacts []ledger.Contact
	Form     contactForm
	Errors   map[string]string
}

func (h *Handler) show(kind ledger.ContactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderContacts(w, r, kind, contactForm{}, map[string]string{}, http.StatusOK)
	}
}

func (h *Handler) handleAdd(kind ledger.ContactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book := ledger.StoreFromContext(r.Context())
		if book == nil {
			h.logger.Error("add contact", slog.Any("error", shared.ErrLedgerMissing))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form := contactForm{
			Name:    r.PostFormValue("name"),
			Contact: r.PostFormValue("contact"),
			Notes:   r.PostFormValue("notes"),
		}
		contact, err := h.service.Add(r.Context(), book, kind, ContactInput(form))
		if err != nil {
			h.logger.Warn("add contact rejected", slog.String("kind", string(kind)), slog.Any("error", err))
			errors := map[string]string{"general": shared.UserSafeMessage(err)}
			for field, msg := range ledger.FieldErrors(err) {
				errors[field] = msg
			}
			h.renderContacts(w, r, kind, form, errors, http.StatusBadRequest)
			return
		}
		h.logger.Info("contact added", slog.String("kind", string(kind)), slog.String("contact_id", contact.ID))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: singular(kind) + " added."})
		}
		http.Redirect(w, r, actionPath(kind), http.StatusSeeOther)
	}
}

func (h *Handler) renderContacts(w http.ResponseWriter, r *http.Request, kind ledger.ContactKind, form contactForm, errors map[string]string, status int) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := contactsPageData{
		Kind:     kind,
		Heading:  heading(kind),
		Action:   actionPath(kind),
		Query:    query,
		Contacts: h.service.Search(book, kind, query),
		Form:     form,
		Errors:   errors,
	}
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: data.Heading, CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/contacts/index.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", "pages/contacts/index.html"))
	}
}

func heading(kind ledger.ContactKind) string {
	if kind == ledger.ContactSupplier {
		return "Suppliers"
	}
	return "Clients"
}

func singular(kind ledger.ContactKind) string {
	if kind == ledger.ContactSupplier {
		return "Supplier"
	}
	return "Client"
}

func actionPath(kind ledger.ContactKind) string {
	if kind == ledger.ContactSupplier {
		return "/contacts/suppliers"
	}
	return "/contacts/clients"
}
