package shared

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// ErrFormValue marks a form field that could not be coerced.
var ErrFormValue = errors.New("form value invalid")

// maxIntExponent bounds the decimal exponent accepted by FormInt; anything
// larger cannot fit in an int64.
const maxIntExponent = 18

// FormInt reads a base-10 whole number; blank values yield zero. Fractions,
// radix prefixes and values outside the int range are rejected.
func FormInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.Exponent() > maxIntExponent || !d.IsInteger() {
		return 0, ErrFormValue
	}
	// d.String has no leading zeros or prefix, so cast parses it as base 10.
	n, err := cast.ToIntE(d.String())
	if err != nil {
		return 0, ErrFormValue
	}
	return n, nil
}

// FormDecimal reads a decimal field; blank values yield zero.
func FormDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrFormValue
	}
	return d, nil
}

// ParseDate accepts the usual date spellings and returns the calendar date at
// UTC midnight. Blank values yield fallback.
func ParseDate(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ledger.CivilDate(fallback), nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, ErrFormValue
	}
	return ledger.CivilDate(t), nil
}
