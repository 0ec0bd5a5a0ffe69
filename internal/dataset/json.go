package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// decodeJSONArray streams the elements of a top-level JSON array. Both
// channels are closed when processing completes.
func decodeJSONArray(ctx context.Context, r io.Reader) (<-chan model.RawRecord, <-chan error) {
	outCh := make(chan model.RawRecord, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			errCh <- eris.Wrap(err, "dataset: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			errCh <- eris.Errorf("dataset: expected '[', got %v", tok)
			return
		}

		for dec.More() {
			var item model.RawRecord
			if err := dec.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "dataset: decode element")
				return
			}
			if !send(ctx, outCh, errCh, item) {
				return
			}
		}

		if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
			errCh <- eris.Wrap(err, "dataset: read closing token")
		}
	}()

	return outCh, errCh
}

// decodeJSONLines streams one JSON object per line.
func decodeJSONLines(ctx context.Context, r io.Reader) (<-chan model.RawRecord, <-chan error) {
	outCh := make(chan model.RawRecord, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		dec := json.NewDecoder(r)
		for {
			var item model.RawRecord
			err := dec.Decode(&item)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "dataset: decode line")
				return
			}
			if !send(ctx, outCh, errCh, item) {
				return
			}
		}
	}()

	return outCh, errCh
}

func send(ctx context.Context, outCh chan<- model.RawRecord, errCh chan<- error, rec model.RawRecord) bool {
	select {
	case outCh <- rec:
		return true
	case <-ctx.Done():
		errCh <- eris.Wrap(ctx.Err(), "dataset: context cancelled")
		return false
	}
}
