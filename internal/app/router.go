package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-lite/internal/contacts"
	"github.com/odyssey-erp/odyssey-lite/internal/expenses"
	"github.com/odyssey-erp/odyssey-lite/internal/export"
	"github.com/odyssey-erp/odyssey-lite/internal/inventory"
	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/observability"
	"github.com/odyssey-erp/odyssey-lite/internal/reports"
	"github.com/odyssey-erp/odyssey-lite/internal/sales"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
	"github.com/odyssey-erp/odyssey-lite/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	Registry         *ledger.Registry
	InventoryHandler *inventory.Handler
	SalesHandler     *sales.Handler
	ExpensesHandler  *expenses.Handler
	ReportsHandler   *reports.Handler
	ContactsHandler  *contacts.Handler
	ExportHandler    *export.Handler
	Metrics          *observability.Metrics
}

type homeSummary struct {
	Products int
	Sales    int
	Expenses int
	LowStock int
}

// NewRouter constructs the chi.Router with Odyssey defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mwConfig := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Registry:       params.Registry,
		Metrics:        params.Metrics,
	}
	for _, mw := range MiddlewareStack(mwConfig) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range SessionStack(mwConfig) {
			r.Use(mw)
		}
		mountLedgerRoutes(r, params)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

// mountLedgerRoutes registers every page and endpoint that works on the
// session ledger.
func mountLedgerRoutes(r chi.Router, params RouterParams) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		var summary homeSummary
		if book := ledger.StoreFromContext(r.Context()); book != nil {
			snap := book.Snapshot()
			summary = homeSummary{Products: len(snap.Products), Sales: len(snap.Sales), Expenses: len(snap.Expenses)}
			for _, p := range snap.Products {
				if p.Stock <= snap.LowStockThreshold {
					summary.LowStock++
				}
			}
		}
		data := view.TemplateData{
			Title:       "Home",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			Data:        summary,
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Post("/session/reset", func(w http.ResponseWriter, r *http.Request) {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			if params.Registry != nil {
				params.Registry.Drop(sess.ID)
			}
			params.SessionManager.Destroy(sess)
			params.Logger.Info("session ledger reset", slog.String("session_id", sess.ID))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	if params.InventoryHandler != nil {
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
	}
	if params.SalesHandler != nil {
		r.Route("/sales", params.SalesHandler.MountRoutes)
	}
	if params.ExpensesHandler != nil {
		r.Route("/expenses", params.ExpensesHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.ContactsHandler != nil {
		r.Route("/contacts", params.ContactsHandler.MountRoutes)
	}
	if params.ExportHandler != nil {
		r.Route("/export", params.ExportHandler.MountRoutes)
	}
}
