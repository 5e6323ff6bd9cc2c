package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

// testFilePattern matches the names test runners pick up: foo.test.ts,
// foo.spec.js and the FooTest.tsx convention.
var testFilePattern = regexp.MustCompile(`(\.(test|spec)\.[cm]?[jt]sx?|Test\.[jt]sx?)$`)

// renamePattern matches the FooTest.ts convention that jest does not pick up.
var renamePattern = regexp.MustCompile(`Test\.([jt]sx?)$`)

// IsTestFile reports whether path is named like a test file.
func IsTestFile(path m.Path) bool {
	return testFilePattern.MatchString(filepath.Base(string(path)))
}

// RenamedPath returns the jest-style name for a FooTest.ts file, or "" when
// path needs no rename.
func RenamedPath(path m.Path) m.Path {
	dir, base := filepath.Split(string(path))

	renamed := renamePattern.ReplaceAllString(base, ".test.$1")
	if strings.EqualFold(renamed, base) {
		return ""
	}

	return m.Path(dir + renamed)
}

// splitPattern turns "./..." style patterns into a root and a recursion flag.
func splitPattern(p m.Path) (m.Path, bool) {
	s := string(p)

	switch {
	case s == "...":
		return ".", true
	case strings.HasSuffix(s, "/..."):
		root := strings.TrimSuffix(s, "/...")
		if root == "" {
			root = "/"
		}

		return m.Path(root), true
	}

	return p, false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		res = append(res, re)
	}

	return res, nil
}

func excluded(path m.Path, excludes []*regexp.Regexp) bool {
	for _, re := range excludes {
		if re.MatchString(string(path)) || re.MatchString(filepath.Base(string(path))) {
			return true
		}
	}

	return false
}

// GetFiles resolves path patterns into the test files to migrate. Files
// named explicitly are taken as-is; directories contribute the script files
// named like tests. Results are sorted and de-duplicated.
func (w *workflow) GetFiles(ctx context.Context, paths []m.Path, exclude []string) ([]m.File, error) {
	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	seen := map[m.Path]bool{}

	var files []m.File

	add := func(path m.Path) error {
		full, err := w.AbsPath(path)
		if err != nil {
			return err
		}

		if seen[full] || excluded(path, excludes) {
			return nil
		}

		seen[full] = true

		hash, err := w.HashFile(full)
		if err != nil {
			return fmt.Errorf("hash error for %s: %w", path, err)
		}

		files = append(files, m.File{ShortPath: m.Path(filepath.Clean(string(path))), FullPath: full, Hash: hash})

		return nil
	}

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(pattern)

		info, err := w.FileInfo(root)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if !w.Supports(root) {
				return nil, fmt.Errorf("%s: not a JavaScript or TypeScript file", root)
			}

			if err := add(root); err != nil {
				return nil, err
			}

			continue
		}

		err = w.Walk(root, recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !w.Supports(m.Path(path)) || !IsTestFile(m.Path(path)) {
				return nil
			}

			return add(m.Path(path))
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ShortPath < files[j].ShortPath
	})

	return files, nil
}

// ShardFiles keeps every file whose position modulo total equals index.
func ShardFiles(files []m.File, index, total int) []m.File {
	if total <= 1 {
		return files
	}

	var shard []m.File

	for i, f := range files {
		if i%total == index {
			shard = append(shard, f)
		}
	}

	return shard
}
