package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

var statusColors = map[m.Status]*color.Color{
	m.Migrated:  color.New(color.FgGreen),
	m.Unchanged: color.New(color.FgCyan),
	m.Skipped:   color.New(color.FgHiBlack),
	m.Failed:    color.New(color.FgRed),
}

// SimpleUI implements UI using the cobra command's output stream.
type SimpleUI struct {
	cmd *cobra.Command

	mu        sync.Mutex
	mode      StartMode
	showDiffs bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = newStartConfig(options).mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayRunInfo shows how the run is split.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.showDiffs = info.Dry && s.mode == ModeRun

	suffix := ""
	if info.Dry {
		suffix = " [dry run]"
	}

	s.printf("Migrating %d file(s) with %d worker(s) (Shard %d/%d)%s\n",
		info.Files, info.Workers, info.ShardIndex, info.ShardCount, suffix)
}

// DisplayFileResult prints one finished file, with its diff on dry runs.
func (s *SimpleUI) DisplayFileResult(ctx context.Context, result m.FileResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if s.mode == ModeList {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %s", formatStatus(result.Status), result.Path)
	if result.Mutations > 0 {
		line += fmt.Sprintf(" (%d rewrites)", result.Mutations)
	}

	if result.RenamedTo != "" {
		line += fmt.Sprintf(" -> %s", result.RenamedTo)
	}

	s.printf("%s\n", line)

	if result.Error != "" {
		s.printf("  error: %s\n", result.Error)
	}

	for _, d := range result.Diagnostics {
		s.printf("  %s %s: %s\n", color.YellowString("!"), d.Pass, d.Message)
	}

	if s.showDiffs && result.Diff != "" {
		s.printf("%s\n", result.Diff)
	}
}

// DisplayReport prints a per-file table with totals.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderReportTable(report))

	return nil
}

func renderReportTable(report m.Report) string {
	var tableBuffer bytes.Buffer

	files := append([]m.FileResult(nil), report.Files...)
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Status", "Rewrites", "Diagnostics"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	for _, f := range files {
		table.Append([]string{
			string(f.Path),
			f.Status.String(),
			fmt.Sprintf("%d", f.Mutations),
			fmt.Sprintf("%d", len(f.Diagnostics)),
		})
	}

	summary := report.Summary()
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", summary.Files),
		summaryCounts(summary),
		fmt.Sprintf("%d", summary.Mutations),
		fmt.Sprintf("%d", summary.Diagnostics),
	})

	table.Render()

	return tableBuffer.String()
}

func summaryCounts(s m.Summary) string {
	parts := []string{fmt.Sprintf("%d migrated", s.Migrated)}

	if s.Unchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", s.Unchanged))
	}

	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}

	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}

	return strings.Join(parts, ", ")
}

func formatStatus(status m.Status) string {
	label := fmt.Sprintf("%-9s", status.String())
	if c, ok := statusColors[status]; ok {
		return c.Sprint(label)
	}

	return label
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
