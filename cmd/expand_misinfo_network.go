package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sells-group/misinfo-cli/internal/model"
)

var expandMisinfoNetworkCmd = &cobra.Command{
	Use:   "expand_misinfo_network",
	Short: "Find subreddits where misinformation posters also comment",
	Long: "Ranks subreddits by how often the top misinformation posters comment in them together, writes the ranking " +
		"to the user sheet and adds untracked subreddits to the tracking sheet.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if users, _ := cmd.Flags().GetInt("users"); users > 0 {
			cfg.Expand.Users = users
		}
		if noTrack, _ := cmd.Flags().GetBool("no-track"); noTrack {
			cfg.Expand.UpdateTracking = false
		}

		env, err := initEnv(ctx, model.RunModeExpand)
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = env.Record(ctx, model.RunModeExpand, func(ctx context.Context) (*model.RunResult, error) {
			res, _, err := env.Expand(ctx)
			return res, err
		})
		return err
	},
}

func init() {
	expandMisinfoNetworkCmd.Flags().Int("users", 0, "posters to analyze (overrides expand.users)")
	expandMisinfoNetworkCmd.Flags().Bool("no-track", false, "do not add discovered subreddits to the tracking sheet")
	rootCmd.AddCommand(expandMisinfoNetworkCmd)
}
