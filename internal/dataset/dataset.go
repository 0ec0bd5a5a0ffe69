// Package dataset loads previously exported scrape datasets from disk so the
// pipeline can run without calling the actor.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
)

// Format identifies a dataset file encoding.
type Format string

// Supported dataset formats.
const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = eris.New("dataset: unsupported format")

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "dataset: %s", filepath.Base(path))
	}
}

// Load reads every record in the file at path. Record order is preserved.
func Load(ctx context.Context, path string) ([]model.RawRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	switch format {
	case FormatXLSX:
		records, err = readXLSX(path)
	default:
		records, err = loadStream(ctx, path, format)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Debug("dataset: loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func loadStream(ctx context.Context, path string, format Format) ([]model.RawRecord, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open file")
	}
	defer f.Close() //nolint:errcheck

	var (
		recCh <-chan model.RawRecord
		errCh <-chan error
	)
	switch format {
	case FormatJSON:
		recCh, errCh = decodeJSONArray(ctx, f)
	case FormatJSONL:
		recCh, errCh = decodeJSONLines(ctx, f)
	case FormatCSV:
		recCh, errCh = streamCSV(ctx, f)
	}

	records := make([]model.RawRecord, 0)
	for rec := range recCh {
		records = append(records, rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return records, nil
}

// fromRow maps a header and row into a record. Empty cells are omitted so
// field alias fallback still applies.
func fromRow(header, row []string) model.RawRecord {
	rec := make(model.RawRecord, len(header))
	for i, key := range header {
		if key == "" || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			rec[key] = v
		}
	}
	return rec
}
