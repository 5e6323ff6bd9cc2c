package model

import "time"

// Status is the outcome of migrating a single file.
type Status int

const (
	// Migrated indicates the file was rewritten.
	Migrated Status = iota
	// Unchanged indicates the file imports the source API but nothing changed.
	Unchanged
	// Skipped indicates the file does not import the source API.
	Skipped
	// Failed indicates the file could not be read, parsed or written.
	Failed
)

func (s Status) String() string {
	switch s {
	case Migrated:
		return "migrated"
	case Unchanged:
		return "unchanged"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Diagnostic records a pass that failed on one file. The file is still
// written with the rewrites of the passes that succeeded.
type Diagnostic struct {
	Path    Path   `yaml:"path"`
	Pass    string `yaml:"pass"`
	Message string `yaml:"message"`
}

// FileResult holds the migration result for a single file.
type FileResult struct {
	File      File   `yaml:"-"`
	Path      Path   `yaml:"path"`
	Status    Status `yaml:"status"`
	Mutations int    `yaml:"mutations"`
	// Passes maps pass names to the number of rewrites they made.
	Passes      map[string]int `yaml:"passes,omitempty"`
	Diagnostics []Diagnostic   `yaml:"diagnostics,omitempty"`
	RenamedTo   Path           `yaml:"renamed_to,omitempty"`
	Diff        string         `yaml:"-"`
	Error       string         `yaml:"error,omitempty"`
}

// Report is the result of one run, or one shard of a run.
type Report struct {
	RunID      string        `yaml:"run_id"`
	StartedAt  time.Time     `yaml:"started_at"`
	Duration   time.Duration `yaml:"duration"`
	ShardIndex int           `yaml:"shard_index"`
	ShardCount int           `yaml:"shard_count"`
	Dry        bool          `yaml:"dry"`
	Files      []FileResult  `yaml:"files"`
}

// Summary aggregates file results by status.
type Summary struct {
	Files       int
	Migrated    int
	Unchanged   int
	Skipped     int
	Failed      int
	Mutations   int
	Diagnostics int
}

// Summarize counts the results of a set of files.
func Summarize(results []FileResult) Summary {
	s := Summary{Files: len(results)}

	for _, r := range results {
		switch r.Status {
		case Migrated:
			s.Migrated++
		case Unchanged:
			s.Unchanged++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		}

		s.Mutations += r.Mutations
		s.Diagnostics += len(r.Diagnostics)
	}

	return s
}

// Summary aggregates the report's file results.
func (r Report) Summary() Summary {
	return Summarize(r.Files)
}
