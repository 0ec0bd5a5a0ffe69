package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scout"
)

var scanCmd = &cobra.Command{
	Use:   "scan <search-term> <location>",
	Short: "Scrape Google Maps and build a target list",
	Example: `  scout scan "Roofing Contractor" "Dallas, TX"
  scout scan plumber "Austin, TX" --pages 4 --format xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scan"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initScout(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		pages, _ := cmd.Flags().GetInt("pages")
		zoom, _ := cmd.Flags().GetInt("zoom")
		query := model.ScanQuery{
			SearchTerm: args[0],
			Location:   args[1],
			PageLimit:  pages,
			Zoom:       zoom,
		}

		zap.L().Info("scan: starting", zap.String("query", query.SearchString()))
		run, err := env.Service.Scan(ctx, query)
		if err != nil && !errors.Is(err, scout.ErrNoResults) {
			if run != nil {
				printSummary(os.Stderr, run)
			}
			return eris.Wrap(err, "scan")
		}

		printSummary(os.Stdout, run)
		return exportRun(cmd, run)
	},
}

// exportRun writes the run's file unless --format none is given.
func exportRun(cmd *cobra.Command, run *model.Run) error {
	format, _ := cmd.Flags().GetString("format")
	if format == "none" || run.Result.Len() == 0 {
		return nil
	}
	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = cfg.Export.Dir
	}
	if format == "" {
		format = cfg.Export.Format
	}
	path, err := writeExport(run, format, dir, time.Now())
	if err != nil {
		return err
	}
	zap.L().Info("export written", zap.String("path", path), zap.Int("targets", run.Result.Len()))
	return nil
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "export format: csv, xlsx, json or none (default from config)")
	cmd.Flags().String("out", "", "export directory (default from config)")
}

func init() {
	scanCmd.Flags().Int("pages", 0, "max result pages to crawl (default from config)")
	scanCmd.Flags().Int("zoom", 0, "map zoom level (default from config)")
	addExportFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}
