package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

// Sheet names in the workbook.
const (
	SheetSummary = "Summary"
)

// WriteXLSX writes a workbook with one sheet per contactable tier, using the
// CSV columns, followed by a Summary sheet of the run counters.
func WriteXLSX(w io.Writer, tl *model.TargetList) error {
	if tl == nil {
		tl = &model.TargetList{}
	}
	f := xlsx.NewFile()

	for _, tier := range model.Tiers {
		if !tier.Contactable() {
			continue
		}
		sheet, err := f.AddSheet(tier.Label())
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", tier.Label())
		}
		addRow(sheet, Columns)
		for _, l := range tl.ByTier(tier) {
			r := sheet.AddRow()
			r.AddCell().SetString(l.Name)
			r.AddCell().SetFloat(l.Rating)
			r.AddCell().SetString(l.CleanPhone)
			r.AddCell().SetString(l.Email)
			r.AddCell().SetString(l.OutreachMessage)
		}
	}

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	c := tl.Counters
	for _, kv := range []struct {
		label string
		n     int
	}{
		{"Fetched", c.Fetched},
		{"Targets", tl.Len()},
		{"Elite", len(tl.ByTier(model.TierElite))},
		{"Growth", len(tl.ByTier(model.TierGrowth))},
		{"Dropped: no phone", c.DroppedNoPhone},
		{"Dropped: invalid phone", c.DroppedInvalidPhone},
		{"Dropped: landline", c.DroppedLandline},
		{"Dropped: low rating", c.DroppedLowRating},
	} {
		r := summary.AddRow()
		r.AddCell().SetString(kv.label)
		r.AddCell().SetInt(kv.n)
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	r := sheet.AddRow()
	for _, v := range values {
		r.AddCell().SetString(v)
	}
}
