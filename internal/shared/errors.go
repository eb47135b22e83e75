package shared

import (
	"errors"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

var (
	// ErrLedgerMissing indicates a request reached a handler without a session ledger.
	ErrLedgerMissing = errors.New("ledger missing from request context")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage converts err into text that can be shown to the user.
func UserSafeMessage(err error) string {
	if errors.Is(err, ErrFormValue) {
		return "Some values could not be read, please check numbers and dates."
	}
	return ledger.UserMessage(err)
}

// FlashFor builds the flash message matching err: warnings for recoverable
// conditions, errors otherwise.
func FlashFor(err error) FlashMessage {
	kind := FlashError
	if ledger.IsWarning(err) {
		kind = FlashWarning
	}
	return FlashMessage{Kind: kind, Message: UserSafeMessage(err)}
}
