package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/misinfo-cli/internal/model"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Tally misinformation URLs in the local sample file",
	Long:  "Reads the sample CSV, prints Detected submissions per subreddit and charts them. No network access, no spreadsheet, no ledger.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if sample, _ := cmd.Flags().GetString("sample"); sample != "" {
			cfg.Collect.SamplePath = sample
		}

		env, err := initEnv(ctx, model.RunModeTest)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.Sample(ctx)
		return err
	},
}

func init() {
	testCmd.Flags().String("sample", "", "sample CSV path (overrides collect.sample_path)")
	rootCmd.AddCommand(testCmd)
}
