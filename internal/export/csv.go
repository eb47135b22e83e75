package export

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// WriteCSV serialises one collection of snap, header row first.
func WriteCSV(w io.Writer, snap ledger.Snapshot, name string) error {
	rows, err := Rows(snap, name)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}
