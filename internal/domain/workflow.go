package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mockshift.dev/pkg/mockshift/internal/adapter"
	"mockshift.dev/pkg/mockshift/internal/controller"
	m "mockshift.dev/pkg/mockshift/internal/model"
	"mockshift.dev/pkg/mockshift/pkg/filespill"
)

// ListArgs contains the arguments for listing migratable files.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Threads int
}

// RunArgs contains the arguments for migrating files.
type RunArgs struct {
	ListArgs
	Reports         m.Path
	ShardIndex      int
	TotalShardCount int
	Dry             bool
	Rename          bool
	// MetricsFile receives a Prometheus textfile when set.
	MetricsFile m.Path
}

// ViewArgs contains the arguments for viewing saved reports.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs contains the arguments for merging sharded reports.
type MergeArgs struct {
	Reports m.Path
}

// Workflow defines the commands the CLI exposes.
type Workflow interface {
	List(ctx context.Context, args ListArgs) error
	Run(ctx context.Context, args RunArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ScriptFileAdapter
	adapter.ReportStore
	controller.UI
	Migrator

	newMetrics func() adapter.MetricsSink
	spillDir   string
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	scriptAdapter adapter.ScriptFileAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	migrator Migrator,
	newMetrics func() adapter.MetricsSink,
) Workflow {
	return &workflow{
		SourceFSAdapter:   fsAdapter,
		ScriptFileAdapter: scriptAdapter,
		ReportStore:       reportStore,
		UI:                ui,
		Migrator:          migrator,
		newMetrics:        newMetrics,
	}
}

// List dry-runs every file and shows how many rewrites each would get.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	files, err := w.GetFiles(ctx, args.Paths, args.Exclude)
	if err != nil {
		return fmt.Errorf("get files: %w", err)
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	results, err := w.migrateAll(ctx, files, MigrateOptions{Dry: true}, args.Threads, nil)
	if err != nil {
		return err
	}

	return w.DisplayReport(ctx, m.Report{Dry: true, ShardCount: 1, Files: results})
}

// Run migrates the files of this shard and saves the report.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	started := time.Now()

	files, err := w.GetFiles(ctx, args.Paths, args.Exclude)
	if err != nil {
		return fmt.Errorf("get files: %w", err)
	}

	shardCount := max(args.TotalShardCount, 1)
	files = ShardFiles(files, args.ShardIndex, shardCount)

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}

	w.DisplayRunInfo(ctx, controller.RunInfo{
		Files:      len(files),
		Workers:    workers(args.Threads, len(files)),
		ShardIndex: args.ShardIndex,
		ShardCount: shardCount,
		Dry:        args.Dry,
	})

	var metrics adapter.MetricsSink
	if args.MetricsFile != "" && w.newMetrics != nil {
		metrics = w.newMetrics()
	}

	opts := MigrateOptions{Dry: args.Dry, Rename: args.Rename}

	results, err := w.migrateAll(ctx, files, opts, args.Threads, func(result m.FileResult) {
		w.DisplayFileResult(ctx, result)

		if metrics != nil {
			metrics.Observe(result)
		}
	})

	w.Close(ctx)
	w.Wait(ctx)

	if err != nil {
		return err
	}

	report := m.Report{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		Duration:   time.Since(started),
		ShardIndex: args.ShardIndex,
		ShardCount: shardCount,
		Dry:        args.Dry,
		Files:      results,
	}

	dir, err := w.SaveReport(args.Reports, report)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	slog.Info("Saved report", "path", dir, "run_id", report.RunID, "files", len(results))

	if metrics != nil {
		if err := metrics.Write(args.MetricsFile); err != nil {
			return err
		}
	}

	return w.DisplayReport(ctx, report)
}

// View shows every saved report under the reports directory.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	for _, report := range reports {
		if err := w.DisplayReport(ctx, report); err != nil {
			return err
		}
	}

	return nil
}

// Merge combines shard reports and shows the result.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	merged, err := w.MergeReports(args.Reports)
	if err != nil {
		return fmt.Errorf("merge reports: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	return w.DisplayReport(ctx, merged)
}

// migrateAll migrates files on up to threads workers. Results are spilled to
// disk as they complete and returned sorted by path.
func (w *workflow) migrateAll(
	ctx context.Context,
	files []m.File,
	opts MigrateOptions,
	threads int,
	observe func(m.FileResult),
) ([]m.FileResult, error) {
	spill, err := filespill.New[m.FileResult](w.spillDir)
	if err != nil {
		return nil, fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Warn("Failed to remove result spill", "path", spill.Path(), "error", err)
		}
	}()

	var group errgroup.Group
	if threads > 0 {
		group.SetLimit(threads)
	}

	for _, file := range files {
		file := file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := w.Migrate(ctx, file, opts)
			if err := spill.Append(result); err != nil {
				return fmt.Errorf("store result for %s: %w", file.ShortPath, err)
			}

			if observe != nil {
				observe(result)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]m.FileResult, 0, spill.Len())

	err = spill.Range(func(_ uint64, result m.FileResult) error {
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func workers(threads, files int) int {
	if threads <= 0 || threads > files {
		return max(files, 1)
	}

	return threads
}
