package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mockshift.dev/pkg/mockshift/internal/domain"
	m "mockshift.dev/pkg/mockshift/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded migration reports",
		Long:  "Merge the reports of shard_* subdirectories into a single summary.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.Merge(cmd.Context(), domain.MergeArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
