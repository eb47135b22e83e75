// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ErrNotFound marks a route or resource that does not exist.
var ErrNotFound = errors.New("resource not found")

// RespondError maps ledger errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ledger.ErrProductNotFound):
		Problem(w, http.StatusNotFound, "Not Found", ledger.UserMessage(err))
	case errors.Is(err, ledger.ErrDuplicateProduct):
		Problem(w, http.StatusConflict, "Duplicate", ledger.UserMessage(err))
	case errors.Is(err, ledger.ErrInsufficientStock):
		Problem(w, http.StatusConflict, "Insufficient Stock", ledger.UserMessage(err))
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidExpenseType),
		errors.Is(err, ledger.ErrInvalidDateRange),
		errors.Is(err, ledger.ErrInvalidThreshold):
		Problem(w, http.StatusBadRequest, "Validation Failed", ledger.UserMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
