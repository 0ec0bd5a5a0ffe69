package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/api"
	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
)

// Export formats accepted by --format.
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatJSON = "json"
)

// writeExport writes the run's targets to dir in the given format and
// returns the file path.
func writeExport(run *model.Run, format, dir string, at time.Time) (string, error) {
	if run.Result == nil {
		return "", eris.Errorf("run %s has no result", run.ID)
	}
	switch format {
	case formatCSV, formatXLSX, formatJSON:
	default:
		return "", eris.Errorf("unsupported export format: %s", format)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", eris.Wrap(err, "export: create dir")
	}
	path := filepath.Join(dir, export.FileName(run.Query, format, at))
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return "", eris.Wrap(err, "export: create file")
	}

	switch format {
	case formatCSV:
		err = export.WriteCSV(f, run.Result.Leads)
	case formatXLSX:
		err = export.WriteXLSX(f, run.Result)
	case formatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(run.Result)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", eris.Wrapf(err, "export: write %s", path)
	}
	return path, nil
}

// printSummary writes the counters and tier split of a finished run.
func printSummary(out io.Writer, run *model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", run.ID)
	_, _ = fmt.Fprintf(w, "Query:\t%s\n", run.Query.SearchString())
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", run.Status)
	if run.Error != "" {
		_, _ = fmt.Fprintf(w, "Error:\t%s\n", run.Error)
	}
	if tl := run.Result; tl != nil {
		c := tl.Counters
		_, _ = fmt.Fprintf(w, "Fetched:\t%d\n", c.Fetched)
		_, _ = fmt.Fprintf(w, "  No phone:\t%d\n", c.DroppedNoPhone)
		_, _ = fmt.Fprintf(w, "  Invalid phone:\t%d\n", c.DroppedInvalidPhone)
		_, _ = fmt.Fprintf(w, "  Landline:\t%d\n", c.DroppedLandline)
		_, _ = fmt.Fprintf(w, "  Low rating:\t%d\n", c.DroppedLowRating)
		_, _ = fmt.Fprintf(w, "Targets:\t%d\n", tl.Len())
		_, _ = fmt.Fprintf(w, "  Elite:\t%d\n", len(tl.ByTier(model.TierElite)))
		_, _ = fmt.Fprintf(w, "  Growth:\t%d\n", len(tl.ByTier(model.TierGrowth)))
	}
	_ = w.Flush()

	if run.Status == model.RunStatusEmpty {
		msg := api.MsgNoTargets
		if run.Result == nil || run.Result.Counters.Fetched == 0 {
			msg = api.MsgNoResults
		}
		_, _ = fmt.Fprintln(out, msg)
	}
}
