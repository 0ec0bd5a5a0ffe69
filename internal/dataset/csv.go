package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// streamCSV reads a headed CSV export and sends one record per row.
func streamCSV(ctx context.Context, r io.Reader) (<-chan model.RawRecord, <-chan error) {
	outCh := make(chan model.RawRecord, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "dataset: read csv header")
			return
		}
		for i, h := range header {
			header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}

		for {
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "dataset: read csv row")
				return
			}
			if !send(ctx, outCh, errCh, fromRow(header, row)) {
				return
			}
		}
	}()

	return outCh, errCh
}
