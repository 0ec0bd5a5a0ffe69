// Package export renders target lists as CSV and XLSX files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// Columns is the fixed CSV header. Downstream tooling depends on the exact
// names and order.
var Columns = []string{"Name", "Rating", "Clean_Phone", "Email", "SMS_Script"}

// WriteCSV writes leads with a header row, in the given order.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, l := range leads {
		if err := cw.Write(row(l)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func row(l model.Lead) []string {
	return []string{
		l.Name,
		FormatRating(l.Rating),
		l.CleanPhone,
		l.Email,
		l.OutreachMessage,
	}
}

// FormatRating renders a rating in its shortest form, keeping one decimal
// for whole numbers: 4.95 -> "4.95", 5 -> "5.0".
func FormatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
