package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mockshift.dev/pkg/mockshift/internal/domain"
	m "mockshift.dev/pkg/mockshift/internal/model"
)

var runParallelFlag int
var runShardFlag string
var runDryFlag bool
var runRenameFlag bool
var strictImportFlag bool
var metricsFileFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Migrate sinon test files to jest",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			shardIndex, totalShards := parseShardFlag(runShardFlag)

			return workflow.Run(cmd.Context(), domain.RunArgs{
				ListArgs: domain.ListArgs{
					Paths:   parsePaths(args),
					Exclude: viper.GetStringSlice(excludeConfigKey),
					Threads: viper.GetInt(runParallelConfigKey),
				},
				Reports:         m.Path(viper.GetString(outputFlagName)),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				Dry:             viper.GetBool(runDryConfigKey),
				Rename:          viper.GetBool(runRenameConfigKey),
				MetricsFile:     m.Path(viper.GetString(metricsFileConfigKey)),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files migrated in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)
	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")

	cmd.Flags().BoolVar(&runDryFlag, runDryFlagName, viper.GetBool(runDryConfigKey), "print diffs instead of writing files")
	bindFlagToConfig(cmd.Flags().Lookup(runDryFlagName), runDryConfigKey)

	cmd.Flags().BoolVar(&runRenameFlag, runRenameFlagName, viper.GetBool(runRenameConfigKey), "rename FooTest.ts files to Foo.test.ts after migrating")
	bindFlagToConfig(cmd.Flags().Lookup(runRenameFlagName), runRenameConfigKey)

	cmd.Flags().BoolVar(&strictImportFlag, strictImportFlagName, viper.GetBool(strictImportConfigKey), "fail files that do not import the source module")
	bindFlagToConfig(cmd.Flags().Lookup(strictImportFlagName), strictImportConfigKey)

	cmd.Flags().StringVar(&metricsFileFlag, metricsFileFlagName, viper.GetString(metricsFileConfigKey), "write Prometheus metrics for the run to this file")
	bindFlagToConfig(cmd.Flags().Lookup(metricsFileFlagName), metricsFileConfigKey)
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
