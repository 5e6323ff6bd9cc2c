package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

const headerTitle = "mockshift - sinon to jest"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	faintStyle = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	mode    StartMode
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live progress view in run mode.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mode = newStartConfig(options).mode
	if p.mode != ModeRun {
		return nil
	}

	p.done = make(chan struct{})
	p.program = tea.NewProgram(newProgressModel(),
		tea.WithOutput(p.output),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	go func() {
		defer close(p.done)

		if _, err := p.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			slog.Error("Failed to run progress view", "error", err)
		}
	}()

	return nil
}

// Close stops the progress view once the last result has been shown.
func (p *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	if p.program != nil {
		p.program.Send(runDoneMsg{})
	}
}

// Wait blocks until the progress view has exited.
func (p *TUI) Wait(ctx context.Context) {
	if p.done == nil {
		return
	}

	select {
	case <-p.done:
	case <-ctx.Done():
	}
}

// DisplayRunInfo sets the totals the progress bar counts towards.
func (p *TUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if err := ctx.Err(); err != nil {
		return
	}

	if p.program != nil {
		p.program.Send(runInfoMsg(info))
	}
}

// DisplayFileResult advances the progress view.
func (p *TUI) DisplayFileResult(ctx context.Context, result m.FileResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if p.program != nil {
		p.program.Send(fileResultMsg(result))
	}
}

// DisplayReport shows a report, paginated when it does not fit the terminal.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newReportModel(report)

	// Get initial terminal size
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	// If list is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

type (
	runInfoMsg    RunInfo
	fileResultMsg m.FileResult
	runDoneMsg    struct{}
)

// progressModel is the live view of a running migration.
type progressModel struct {
	info     RunInfo
	done     int
	counts   map[m.Status]int
	last     string
	failures []string
	spinner  spinner.Model
	bar      progress.Model
	finished bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return progressModel{
		counts:  map[m.Status]int{},
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runInfoMsg:
		pm.info = RunInfo(msg)
		return pm, nil

	case fileResultMsg:
		pm.done++
		pm.counts[msg.Status]++
		pm.last = string(msg.Path)

		if msg.Status == m.Failed || len(msg.Diagnostics) > 0 {
			pm.failures = append(pm.failures, string(msg.Path))
		}

		return pm, nil

	case runDoneMsg:
		pm.finished = true
		return pm, tea.Quit

	case tea.WindowSizeMsg:
		pm.bar.Width = min(msg.Width-4, 60)
		return pm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return pm, tea.Quit
		}

		return pm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

func (pm progressModel) percent() float64 {
	if pm.info.Files == 0 {
		return 0
	}

	return float64(pm.done) / float64(pm.info.Files)
}

func (pm progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(headerTitle))
	b.WriteString("\n\n")

	prefix := pm.spinner.View()
	if pm.finished {
		prefix = okStyle.Render("✓")
	}

	fmt.Fprintf(&b, "  %s Migrating %d/%d file(s) with %d worker(s)", prefix, pm.done, pm.info.Files, pm.info.Workers)

	if pm.info.ShardCount > 1 {
		fmt.Fprintf(&b, " (shard %d/%d)", pm.info.ShardIndex, pm.info.ShardCount)
	}

	if pm.info.Dry {
		b.WriteString(faintStyle.Render(" [dry run]"))
	}

	b.WriteString("\n\n  ")
	b.WriteString(pm.bar.ViewAs(pm.percent()))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		okStyle.Render(fmt.Sprintf("migrated %d", pm.counts[m.Migrated])),
		fmt.Sprintf("unchanged %d", pm.counts[m.Unchanged]),
		faintStyle.Render(fmt.Sprintf("skipped %d", pm.counts[m.Skipped])),
		failStyle.Render(fmt.Sprintf("failed %d", pm.counts[m.Failed])),
	)

	if pm.last != "" && !pm.finished {
		b.WriteString(faintStyle.Render("  last: " + pm.last))
		b.WriteString("\n")
	}

	for _, f := range pm.failures {
		b.WriteString(warnStyle.Render("  ! " + f))
		b.WriteString("\n")
	}

	return b.String()
}

// reportModel represents the Bubble Tea model for browsing a saved report.
type reportModel struct {
	lines    []string
	summary  m.Summary
	height   int
	width    int
	offset   int
	quitting bool
}

func newReportModel(report m.Report) reportModel {
	files := append([]m.FileResult(nil), report.Files...)
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return reportModel{
		lines:   reportLines(files),
		summary: report.Summary(),
	}
}

func reportLines(files []m.FileResult) []string {
	lines := make([]string, 0, len(files))

	for _, f := range files {
		icon := okStyle.Render("✓")

		switch {
		case f.Status == m.Failed:
			icon = failStyle.Render("✗")
		case len(f.Diagnostics) > 0:
			icon = warnStyle.Render("!")
		case f.Status == m.Skipped || f.Status == m.Unchanged:
			icon = faintStyle.Render("-")
		}

		lines = append(lines, fmt.Sprintf("  %s %s: %s, %d rewrites", icon, f.Path, f.Status, f.Mutations))

		for _, d := range f.Diagnostics {
			lines = append(lines, fmt.Sprintf("      %s: %s", d.Pass, d.Message))
		}

		if f.Error != "" {
			lines = append(lines, "      "+f.Error)
		}
	}

	return lines
}

func (rm reportModel) Init() tea.Cmd {
	return nil
}

func (rm reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		rm.width = msg.Width

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)
	}

	return rm, nil
}

//nolint:cyclop // Key handling requires multiple cases for UI navigation
func (rm reportModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // We only handle specific navigation keys
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rm.quitting = true
		return rm, tea.Quit
	default:
		// Handle other key types in the string switch below
	}

	switch msg.String() {
	case "q":
		rm.quitting = true
		return rm, tea.Quit

	case "down", "j":
		rm.offset = min(rm.offset+1, rm.maxOffset())

	case "up", "k":
		rm.offset = max(rm.offset-1, 0)

	case "g", "home":
		rm.offset = 0

	case "G", "end":
		rm.offset = rm.maxOffset()

	case "d", "pgdown":
		rm.offset = min(rm.offset+rm.itemsPerPage(), rm.maxOffset())

	case "u", "pgup":
		rm.offset = max(rm.offset-rm.itemsPerPage(), 0)
	}

	return rm, nil
}

func (rm reportModel) itemsPerPage() int {
	if rm.height == 0 {
		return 10
	}
	// Header box and title: 5 lines, summary: 3 lines, footer: 3 lines.
	reserved := 11

	available := rm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

func (rm reportModel) maxOffset() int {
	return max(len(rm.lines)-rm.itemsPerPage(), 0)
}

func (rm reportModel) needsPagination() bool {
	return rm.height > 0 && len(rm.lines) > rm.itemsPerPage()
}

func (rm reportModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(headerTitle))
	b.WriteString("\n\n")

	if len(rm.lines) == 0 {
		b.WriteString("  📭 No migrated files found\n")
		return b.String()
	}

	paginated := rm.needsPagination()

	visible := rm.lines
	if paginated {
		end := min(rm.offset+rm.itemsPerPage(), len(rm.lines))
		visible = rm.lines[rm.offset:end]
	}

	for _, line := range visible {
		b.WriteString(line)
		b.WriteString("\n")
	}

	s := rm.summary

	b.WriteString("\n")
	fmt.Fprintf(&b, "  📊 Summary:\n")
	fmt.Fprintf(&b, "  Files: %d | Migrated: %d | Unchanged: %d | Skipped: %d | Failed: %d | Rewrites: %d\n",
		s.Files, s.Migrated, s.Unchanged, s.Skipped, s.Failed, s.Mutations)

	if paginated {
		b.WriteString("\n")

		end := min(rm.offset+rm.itemsPerPage(), len(rm.lines))
		fmt.Fprintf(&b, "  Lines %d-%d of %d\n", rm.offset+1, end, len(rm.lines))
		b.WriteString("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit\n")
	}

	return b.String()
}
