package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mockshift.dev/pkg/mockshift/internal/domain/passes"
	m "mockshift.dev/pkg/mockshift/internal/model"
	"mockshift.dev/pkg/mockshift/internal/syntax"
)

// DefaultSourceModule is the module whose API the passes rewrite.
const DefaultSourceModule = "sinon"

// ErrSourceNotImported is returned in strict mode for files that never
// import the source module.
var ErrSourceNotImported = errors.New("source module is not imported")

// PassError wraps a failure raised by a single pass.
type PassError struct {
	Pass string
	Err  error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("pass %s: %v", e.Pass, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// PipelineOptions configure a Pipeline.
type PipelineOptions struct {
	SourceModule string
	// StrictImport turns a missing source import into ErrSourceNotImported
	// instead of a silent no-op.
	StrictImport bool
	Passes       passes.Options
}

// DefaultPipelineOptions returns the options used when none are configured.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		SourceModule: DefaultSourceModule,
		Passes:       passes.DefaultOptions(),
	}
}

// Outcome describes what a pipeline run did to one tree.
type Outcome struct {
	// Imported reports whether the file imported the source module.
	Imported  bool
	Mutations int
	// PassMutations maps pass names to their rewrite counts.
	PassMutations map[string]int
	Diagnostics   []m.Diagnostic
}

// Changed reports whether the tree was modified. Removing the source
// import alone counts as a change.
func (o Outcome) Changed() bool {
	return o.Imported
}

// Pipeline runs the rewrite passes over a parsed file.
type Pipeline interface {
	Run(ctx context.Context, path m.Path, root *syntax.Node) (Outcome, error)
}

type pipelineState int

const (
	stateInit pipelineState = iota
	stateDetect
	stateRunning
	stateImportCleanup
	stateDone
)

func (s pipelineState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateDetect:
		return "detect"
	case stateRunning:
		return "running"
	case stateImportCleanup:
		return "import-cleanup"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

type pipeline struct {
	opts   PipelineOptions
	passes []passes.Pass
}

// NewPipeline creates a pipeline running list, or every pass in its
// required order when list is empty.
func NewPipeline(opts PipelineOptions, list ...passes.Pass) Pipeline {
	if opts.SourceModule == "" {
		opts.SourceModule = DefaultSourceModule
	}

	if len(list) == 0 {
		list = passes.All()
	}

	return &pipeline{opts: opts, passes: list}
}

// Run moves root through detect, the passes and import cleanup. The tree is
// mutated in place; a file without the source import is left untouched.
func (p *pipeline) Run(ctx context.Context, path m.Path, root *syntax.Node) (Outcome, error) {
	out := Outcome{PassMutations: map[string]int{}}
	logger := slog.Default().With("path", path)
	state := stateInit

	advance := func(next pipelineState) {
		logger.Debug("pipeline state", "from", state, "to", next)
		state = next
	}

	advance(stateDetect)

	if err := ctx.Err(); err != nil {
		return out, err
	}

	imp := syntax.FindImport(root, p.opts.SourceModule)
	if imp == nil {
		advance(stateDone)

		if p.opts.StrictImport {
			return out, fmt.Errorf("%s: %w", path, ErrSourceNotImported)
		}

		return out, nil
	}

	out.Imported = true
	pctx := passes.NewContext(root, imp, p.opts.Passes, logger)

	advance(stateRunning)

	var pending []passes.Import

	for _, pass := range p.passes {
		res, err := runPass(pctx, pass)
		pctx.Invalidate()

		if err != nil {
			logger.Warn("Pass failed", "pass", pass.Name, "error", err)
			out.Diagnostics = append(out.Diagnostics, m.Diagnostic{Path: path, Pass: pass.Name, Message: err.Error()})

			continue
		}

		out.Mutations += res.Mutations
		out.PassMutations[pass.Name] += res.Mutations
		pending = append(pending, res.Imports...)
	}

	advance(stateImportCleanup)

	anchor := imp.Decl
	if anchor.Is(syntax.KindDeclarator) {
		anchor = anchor.Parent
	}

	syntax.InsertImports(root, anchor, importStatements(root, pending)...)
	syntax.RemoveImport(imp)

	advance(stateDone)

	return out, nil
}

func runPass(pctx *passes.Context, pass passes.Pass) (res passes.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PassError{Pass: pass.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	res, err = pass.Run(pctx)
	if err != nil {
		return res, &PassError{Pass: pass.Name, Err: err}
	}

	return res, nil
}

// importStatements groups pending bindings by module in first-seen order,
// dropping duplicates and names the file already imports.
func importStatements(root *syntax.Node, pending []passes.Import) []*syntax.Node {
	var modules []string

	names := map[string][]string{}
	seen := map[passes.Import]bool{}

	for _, imp := range pending {
		if seen[imp] {
			continue
		}

		seen[imp] = true

		if existing := syntax.FindImport(root, imp.Module); existing.Local(imp.Name) != "" {
			continue
		}

		if _, ok := names[imp.Module]; !ok {
			modules = append(modules, imp.Module)
		}

		names[imp.Module] = append(names[imp.Module], imp.Name)
	}

	stmts := make([]*syntax.Node, 0, len(modules))
	for _, module := range modules {
		stmts = append(stmts, syntax.ImportStatement(module, names[module]...))
	}

	return stmts
}
