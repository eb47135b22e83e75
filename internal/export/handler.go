package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MetricsPort records operation outcomes.
type MetricsPort interface {
	RecordOperation(operation, outcome string)
}

// Handler serves spreadsheet downloads of the session ledger.
type Handler struct {
	logger  *slog.Logger
	metrics MetricsPort
	now     func() time.Time
}

// NewHandler constructs export handler. metrics may be nil.
func NewHandler(logger *slog.Logger, metrics MetricsPort) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, metrics: metrics, now: time.Now}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/workbook.xlsx", h.downloadWorkbook)
	r.Get("/{collection}.csv", h.downloadCSV)
}

func (h *Handler) downloadWorkbook(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("export workbook", slog.Any("error", shared.ErrLedgerMissing))
		httpx.RespondError(w, shared.ErrLedgerMissing)
		return
	}
	data, err := Workbook(book.Snapshot())
	h.record("export.workbook", err)
	if err != nil {
		h.logger.Error("export workbook", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Attachment(w, xlsxContentType, "ledger-"+h.now().Format(ledger.DateLayout)+".xlsx", data)
}

func (h *Handler) downloadCSV(w http.ResponseWriter, r *http.Request) {
	book := ledger.StoreFromContext(r.Context())
	if book == nil {
		h.logger.Error("export csv", slog.Any("error", shared.ErrLedgerMissing))
		httpx.RespondError(w, shared.ErrLedgerMissing)
		return
	}
	name := chi.URLParam(r, "collection")
	var buf bytes.Buffer
	err := WriteCSV(&buf, book.Snapshot(), name)
	h.record("export.csv", err)
	if err != nil {
		if errors.Is(err, ErrUnknownCollection) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, name))
			return
		}
		h.logger.Error("export csv", slog.String("collection", name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Attachment(w, "text/csv; charset=utf-8", name+"-"+h.now().Format(ledger.DateLayout)+".csv", buf.Bytes())
}

func (h *Handler) record(operation string, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordOperation(operation, ledger.Outcome(err))
}
