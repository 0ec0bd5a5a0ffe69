package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/sink"
	"github.com/sells-group/lead-scout/pkg/notion"
	"github.com/sells-group/lead-scout/pkg/salesforce"
)

var pushCmd = &cobra.Command{
	Use:   "push <run-id>",
	Short: "Send a stored scan's targets to Notion and/or Salesforce",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toNotion, _ := cmd.Flags().GetBool("notion")
		toSF, _ := cmd.Flags().GetBool("salesforce")
		if !toNotion && !toSF {
			return eris.New("push: choose at least one of --notion or --salesforce")
		}

		sinks, err := initSinks(toNotion, toSF)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "push")
		}
		if !pushable(run) {
			fmt.Fprintf(os.Stderr, "Run %s (%s) has no targets to push.\n", truncateID(run.ID), run.Status)
			return nil
		}

		for _, s := range sinks {
			res, err := s.Push(ctx, run.Result.Leads)
			printPushResult(os.Stdout, s.Name(), res)
			if err != nil {
				return eris.Wrapf(err, "push %s", s.Name())
			}
			zap.L().Info("push: done", zap.String("run_id", run.ID), zap.String("sink", s.Name()))
		}
		return nil
	},
}

func initSinks(toNotion, toSF bool) ([]sink.Sink, error) {
	var sinks []sink.Sink
	if toNotion {
		if err := cfg.Validate("push.notion"); err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewNotion(notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB))
	}
	if toSF {
		if err := cfg.Validate("push.salesforce"); err != nil {
			return nil, err
		}
		client, err := salesforce.Connect(salesforce.Creds{
			LoginURL: cfg.Salesforce.LoginURL,
			Username: cfg.Salesforce.Username,
			ClientID: cfg.Salesforce.ClientID,
			KeyPath:  cfg.Salesforce.KeyPath,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewSalesforce(client))
	}
	return sinks, nil
}

func printPushResult(out io.Writer, name string, res sink.PushResult) {
	_, _ = fmt.Fprintf(out, "%s: created=%d updated=%d skipped=%d failed=%d\n",
		name, res.Created, res.Updated, res.Skipped, res.Failed)
	for _, e := range res.Errors {
		_, _ = fmt.Fprintf(out, "  %s\n", e)
	}
}

// pushable reports whether run holds targets a sink can use.
func pushable(run *model.Run) bool {
	return run != nil && run.Status == model.RunStatusComplete && run.Result.Len() > 0
}

func init() {
	pushCmd.Flags().Bool("notion", false, "create or update pages in the Notion lead database")
	pushCmd.Flags().Bool("salesforce", false, "insert Lead records into Salesforce")
	rootCmd.AddCommand(pushCmd)
}
