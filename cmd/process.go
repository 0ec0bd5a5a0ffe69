package main

import (
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/dataset"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scout"
)

var processCmd = &cobra.Command{
	Use:   "process <dataset-file>",
	Short: "Run the pipeline over a saved dataset (json, jsonl, csv or xlsx)",
	Long: "Processes a dataset previously exported from the scraping actor without calling it. " +
		"The location is used as the {city} in outreach messages.",
	Example: `  scout process items.json --term "Roofing Contractor" --location "Dallas, TX"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("process"); err != nil {
			return err
		}
		ctx := cmd.Context()

		term, _ := cmd.Flags().GetString("term")
		location, _ := cmd.Flags().GetString("location")

		records, err := dataset.Load(ctx, args[0])
		if err != nil {
			return err
		}
		zap.L().Info("process: dataset loaded", zap.String("path", args[0]), zap.Int("records", len(records)))

		env, err := initScout(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Service.Process(ctx, model.ScanQuery{SearchTerm: term, Location: location}, records)
		if err != nil && !errors.Is(err, scout.ErrNoResults) {
			return eris.Wrap(err, "process")
		}

		printSummary(os.Stdout, run)
		return exportRun(cmd, run)
	},
}

func init() {
	processCmd.Flags().String("term", "", "search term the dataset was scraped for")
	processCmd.Flags().String("location", "", "location the dataset was scraped for")
	_ = processCmd.MarkFlagRequired("term")
	_ = processCmd.MarkFlagRequired("location")
	addExportFlags(processCmd)
	rootCmd.AddCommand(processCmd)
}
