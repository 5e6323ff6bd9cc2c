// Package cmd provides the root command and CLI setup for mockshift.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mockshift.dev/pkg/mockshift/internal/adapter"
	"mockshift.dev/pkg/mockshift/internal/controller"
	"mockshift.dev/pkg/mockshift/internal/domain"
	m "mockshift.dev/pkg/mockshift/internal/model"
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

var fsAdapter adapter.SourceFSAdapter
var scriptAdapter adapter.ScriptFileAdapter
var diffAdapter adapter.DiffAdapter
var reportStore adapter.ReportStore
var pipeline domain.Pipeline
var migrator domain.Migrator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// verboseFlag switches the log file to debug level.
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	scriptAdapter = adapter.NewLocalScriptFileAdapter()
	diffAdapter = adapter.NewLocalDiffAdapter()
	reportStore = adapter.NewReportStore()
	pipeline = &configuredPipeline{}
	migrator = domain.NewMigrator(fsAdapter, scriptAdapter, diffAdapter, pipeline)
	workflow = domain.NewWorkflow(
		fsAdapter,
		scriptAdapter,
		reportStore,
		ui,
		migrator,
		newMetrics,
	)
}

func newMetrics() adapter.MetricsSink {
	return adapter.NewPrometheusMetrics()
}

// configuredPipeline builds the rewrite pipeline from the configuration the
// first time a file is migrated, after flags have been parsed.
type configuredPipeline struct {
	once     sync.Once
	pipeline domain.Pipeline
}

func (p *configuredPipeline) Run(ctx context.Context, path m.Path, root *syntax.Node) (domain.Outcome, error) {
	p.once.Do(func() {
		p.pipeline = domain.NewPipeline(pipelineOptions())
	})

	return p.pipeline.Run(ctx, path, root)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./test   scan multiple directories
  - a.test.ts      migrate a single file`

const rootLongDescription = `Mockshift rewrites JavaScript and TypeScript test files from the sinon
mocking API to jest. It converts spies, stubs, fake timers, sandboxes,
assertions and argument matchers, and removes the sinon import.

` + pathPatternsHelp

const runLongDescription = `Migrate the test files under the given paths (default: current directory).

` + pathPatternsHelp

const listLongDescription = `List test files and the number of rewrites each would receive.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mockshift",
		Short: "Migrate sinon test code to jest",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for migration reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "write debug logs")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
