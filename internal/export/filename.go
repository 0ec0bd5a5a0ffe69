package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-scout/internal/model"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FileName builds the download name for a scan export, for example
// "scout_roofers_dallas_2026-03-01.csv".
func FileName(q model.ScanQuery, ext string, at time.Time) string {
	return fmt.Sprintf("scout_%s_%s_%s.%s",
		slug(q.SearchTerm), slug(q.Location), at.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

// slug folds accents, lowercases s and collapses every run of
// non-alphanumerics to "-".
func slug(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "all"
	}
	return out
}
