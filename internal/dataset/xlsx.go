package dataset

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

// readXLSX reads the first sheet of a workbook, using its first row as the
// header.
func readXLSX(path string) ([]model.RawRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("dataset: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	records := make([]model.RawRecord, 0, max(len(sheet.Rows)-1, 0))
	var header []string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		rec := fromRow(header, cells)
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
