package ledger

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher performs case-insensitive substring matching using Unicode case
// folding. The zero query matches everything.
type Matcher struct {
	folded string
}

// NewMatcher prepares query for repeated matching.
func NewMatcher(query string) Matcher {
	q := strings.TrimSpace(query)
	if q == "" {
		return Matcher{}
	}
	return Matcher{folded: cases.Fold().String(q)}
}

// Empty reports whether the matcher accepts every value.
func (m Matcher) Empty() bool {
	return m.folded == ""
}

// Match reports whether any of fields contains the query.
func (m Matcher) Match(fields ...string) bool {
	if m.folded == "" {
		return true
	}
	caser := cases.Fold()
	for _, f := range fields {
		if strings.Contains(caser.String(f), m.folded) {
			return true
		}
	}
	return false
}
