package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/monitoring"
	"github.com/sells-group/misinfo-cli/internal/report"
	"github.com/sells-group/misinfo-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect run history",
	Long:  "Commands for listing, viewing, and summarizing recorded runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		mode, _ := cmd.Flags().GetString("mode")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Mode:   model.RunMode(mode),
			Status: model.RunStatus(status),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}

		report.WriteRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		format, _ := cmd.Flags().GetString("format")
		return encode(cmd.OutOrStdout(), format, run)
	},
}

// -- runs summary --

var runsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		hours, _ := cmd.Flags().GetInt("since-hours")
		top, _ := cmd.Flags().GetInt("top")
		format, _ := cmd.Flags().GetString("format")

		snap, err := monitoring.NewCollector(st).Collect(ctx, hours, top)
		if err != nil {
			return eris.Wrap(err, "runs summary")
		}
		return encode(cmd.OutOrStdout(), format, snap)
	},
}

// encode writes v as YAML (default) or indented JSON.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return eris.Errorf("unknown format %q (want yaml or json)", format)
	}
}

func init() {
	runsListCmd.Flags().String("mode", "", "filter by mode (test, get_submission_data, expand_misinfo_network)")
	runsListCmd.Flags().String("status", "", "filter by status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 20, "max runs to list")
	runsListCmd.Flags().Int("offset", 0, "runs to skip")

	runsShowCmd.Flags().String("format", "yaml", "output format (yaml or json)")

	runsSummaryCmd.Flags().Int("since-hours", 24*7, "lookback window in hours (0 = all runs)")
	runsSummaryCmd.Flags().Int("top", 10, "top domains to include")
	runsSummaryCmd.Flags().String("format", "yaml", "output format (yaml or json)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSummaryCmd)
	rootCmd.AddCommand(runsCmd)
}
