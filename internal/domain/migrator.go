// Package domain contains the migration workflow and the rewrite pipeline.
package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mockshift.dev/pkg/mockshift/internal/adapter"
	m "mockshift.dev/pkg/mockshift/internal/model"
)

// MigrateOptions control what a migration does to the file system.
type MigrateOptions struct {
	// Dry computes the result and diff without writing anything.
	Dry bool
	// Rename moves FooTest.ts files to Foo.test.ts after migrating them.
	Rename bool
}

// ErrFileChanged reports a file that was modified after discovery.
var ErrFileChanged = errors.New("file changed since discovery")

// Migrator migrates a single file. Failures are reported in the result, so
// one bad file never stops a batch.
type Migrator interface {
	Migrate(ctx context.Context, file m.File, opts MigrateOptions) m.FileResult
}

type migrator struct {
	adapter.SourceFSAdapter
	adapter.ScriptFileAdapter
	adapter.DiffAdapter
	pipeline Pipeline
}

// NewMigrator creates a Migrator running pipeline over each file.
func NewMigrator(
	fsAdapter adapter.SourceFSAdapter,
	scriptAdapter adapter.ScriptFileAdapter,
	diffAdapter adapter.DiffAdapter,
	pipeline Pipeline,
) Migrator {
	return &migrator{
		SourceFSAdapter:   fsAdapter,
		ScriptFileAdapter: scriptAdapter,
		DiffAdapter:       diffAdapter,
		pipeline:          pipeline,
	}
}

func (mg *migrator) Migrate(ctx context.Context, file m.File, opts MigrateOptions) m.FileResult {
	result := m.FileResult{File: file, Path: file.ShortPath}

	fail := func(err error) m.FileResult {
		slog.Error("Failed to migrate file", "path", file.ShortPath, "error", err)

		result.Status = m.Failed
		result.Error = err.Error()

		return result
	}

	src, err := mg.ReadFile(file.FullPath)
	if err != nil {
		return fail(fmt.Errorf("read %s: %w", file.ShortPath, err))
	}

	root, err := mg.Parse(ctx, file.FullPath, src)
	if err != nil {
		return fail(fmt.Errorf("parse %s: %w", file.ShortPath, err))
	}

	outcome, err := mg.pipeline.Run(ctx, file.ShortPath, root)
	if err != nil {
		return fail(err)
	}

	result.Mutations = outcome.Mutations
	result.Diagnostics = outcome.Diagnostics
	result.Passes = nonZero(outcome.PassMutations)

	if !outcome.Imported {
		result.Status = m.Skipped
		return result
	}

	out := mg.Print(root)

	result.Status = m.Unchanged
	if !bytes.Equal(src, out) {
		result.Status = m.Migrated

		if result.Diff, err = mg.Unified(file.ShortPath, src, out); err != nil {
			return fail(err)
		}
	}

	if result.Status == m.Migrated && !opts.Dry {
		info, err := mg.FileInfo(file.FullPath)
		if err != nil {
			return fail(fmt.Errorf("stat %s: %w", file.ShortPath, err))
		}

		if err := mg.checkUnchanged(file); err != nil {
			return fail(err)
		}

		if err := mg.WriteFile(file.FullPath, out, info.Mode().Perm()); err != nil {
			return fail(fmt.Errorf("write %s: %w", file.ShortPath, err))
		}
	}

	if opts.Rename {
		if target := RenamedPath(file.FullPath); target != "" {
			result.RenamedTo = RenamedPath(file.ShortPath)

			if !opts.Dry {
				if err := mg.Rename(file.FullPath, target); err != nil {
					return fail(fmt.Errorf("rename %s: %w", file.ShortPath, err))
				}
			}
		}
	}

	slog.Info("Migrated file", "path", file.ShortPath, "status", result.Status, "rewrites", result.Mutations)

	return result
}

// checkUnchanged refuses to overwrite a file whose content no longer
// matches the fingerprint taken when it was discovered.
func (mg *migrator) checkUnchanged(file m.File) error {
	if file.Hash == "" {
		return nil
	}

	hash, err := mg.HashFile(file.FullPath)
	if err != nil {
		return fmt.Errorf("hash %s: %w", file.ShortPath, err)
	}

	if hash != file.Hash {
		return fmt.Errorf("%w: %s", ErrFileChanged, file.ShortPath)
	}

	return nil
}

func nonZero(counts map[string]int) map[string]int {
	var out map[string]int

	for k, v := range counts {
		if v == 0 {
			continue
		}

		if out == nil {
			out = map[string]int{}
		}

		out[k] = v
	}

	return out
}
