package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("ledger: validation failed")
	// ErrDuplicateProduct indicates a product name already used in this ledger.
	ErrDuplicateProduct = errors.New("ledger: product name already exists")
	// ErrProductNotFound indicates a sale referencing an unknown product.
	ErrProductNotFound = errors.New("ledger: product not found")
	// ErrInvalidQuantity indicates a sale quantity that is not positive.
	ErrInvalidQuantity = errors.New("ledger: quantity must be greater than zero")
	// ErrInsufficientStock indicates a sale larger than the available stock.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrInvalidExpenseType indicates an expense type outside the closed set.
	ErrInvalidExpenseType = errors.New("ledger: invalid expense type")
	// ErrInvalidDateRange indicates a report range whose start is after its end.
	ErrInvalidDateRange = errors.New("ledger: date range start after end")
	// ErrInvalidThreshold indicates a negative low stock threshold.
	ErrInvalidThreshold = errors.New("ledger: low stock threshold must be >= 0")
)

// ValidationError carries field level messages; it matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError reports available versus requested quantities so the
// caller can retry with a smaller amount.
type InsufficientStockError struct {
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("ledger: insufficient stock for %s: available %d, requested %d", e.Product, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsWarning reports whether err is a recoverable condition the user can fix
// by adjusting the request, as opposed to a rejected input.
func IsWarning(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// Operation outcomes recorded by the services.
const (
	OutcomeOK       = "ok"
	OutcomeWarning  = "warning"
	OutcomeRejected = "rejected"
)

// Outcome classifies the result of a ledger operation for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case IsWarning(err):
		return OutcomeWarning
	default:
		return OutcomeRejected
	}
}

// UserMessage renders err as text safe to show in the UI.
func UserMessage(err error) string {
	var stockErr *InsufficientStockError
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Insufficient stock for %s. Available %d, requested %d.", stockErr.Product, stockErr.Available, stockErr.Requested)
	case errors.As(err, &validationErr):
		if msg, ok := validationErr.Fields["name"]; ok {
			return "Name " + msg + "."
		}
		return "Please check the highlighted fields."
	case errors.Is(err, ErrDuplicateProduct):
		return "A product with this name already exists."
	case errors.Is(err, ErrProductNotFound):
		return "Product not found."
	case errors.Is(err, ErrInvalidQuantity):
		return "Quantity must be greater than 0."
	case errors.Is(err, ErrInvalidExpenseType):
		return "Unknown expense type."
	case errors.Is(err, ErrInvalidDateRange):
		return "The start date must not be after the end date."
	case errors.Is(err, ErrInvalidThreshold):
		return "The low stock threshold cannot be negative."
	case errors.Is(err, ErrValidation):
		return "Please check the submitted values."
	default:
		return "Something went wrong, please try again."
	}
}

// FieldErrors returns the per-field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
