package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/misinfo-cli/internal/model"
)

var getSubmissionDataCmd = &cobra.Command{
	Use:   "get_submission_data",
	Short: "Fetch new submissions for every tracked subreddit",
	Long:  "Fetches each tracked subreddit's top submissions, flags links to known misinformation domains and appends the new ones to the data sheet.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			cfg.Collect.SubmissionLimit = limit
		}
		if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
			cfg.Collect.Progress = false
		}

		env, err := initEnv(ctx, model.RunModeCollect)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.Record(ctx, model.RunModeCollect, env.Collect)
		return err
	},
}

func init() {
	getSubmissionDataCmd.Flags().Int("limit", 0, "max submissions per subreddit (overrides collect.submission_limit)")
	getSubmissionDataCmd.Flags().Bool("no-progress", false, "log progress instead of drawing progress bars")
	rootCmd.AddCommand(getSubmissionDataCmd)
}
