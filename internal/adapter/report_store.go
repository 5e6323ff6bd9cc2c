package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "mockshift.dev/pkg/mockshift/internal/model"
)

const (
	reportFileName = "report.yaml"
	patchFileName  = "changes.patch"
	shardDirPrefix = "shard_"
)

// ErrNoReports is returned when a reports directory holds no report.
var ErrNoReports = errors.New("no reports found")

// ReportStore persists run reports. Sharded runs write into shard_<index>
// subdirectories so shards sharing a reports directory do not collide.
type ReportStore interface {
	// SaveReport writes report (and the diffs of its files) and returns the
	// directory it was written to.
	SaveReport(dir m.Path, report m.Report) (m.Path, error)

	// LoadReports reads the top-level report and every shard report under dir.
	LoadReports(dir m.Path) ([]m.Report, error)

	// MergeReports combines the shard reports under dir into one top-level report.
	MergeReports(dir m.Path) (m.Report, error)
}

// LocalReportStore stores reports as YAML files.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReport writes report.yaml and changes.patch into the report's directory.
func (s *LocalReportStore) SaveReport(dir m.Path, report m.Report) (m.Path, error) {
	target := string(dir)
	if report.ShardCount > 1 {
		target = filepath.Join(target, fmt.Sprintf("%s%d", shardDirPrefix, report.ShardIndex))
	}

	if err := os.MkdirAll(target, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir %s: %w", target, err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(filepath.Join(target, reportFileName), data, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if err := os.WriteFile(filepath.Join(target, patchFileName), []byte(patch(report.Files)), 0o600); err != nil {
		return "", fmt.Errorf("write patch: %w", err)
	}

	return m.Path(target), nil
}

// LoadReports reads dir/report.yaml followed by dir/shard_*/report.yaml in
// shard order.
func (s *LocalReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	var reports []m.Report

	top, err := readReport(filepath.Join(string(dir), reportFileName))

	switch {
	case err == nil:
		reports = append(reports, top)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	shards, err := s.loadShards(dir)
	if err != nil {
		return nil, err
	}

	reports = append(reports, shards...)
	if len(reports) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoReports)
	}

	return reports, nil
}

// MergeReports folds every shard report into dir/report.yaml.
func (s *LocalReportStore) MergeReports(dir m.Path) (m.Report, error) {
	shards, err := s.loadShards(dir)
	if err != nil {
		return m.Report{}, err
	}

	if len(shards) == 0 {
		return m.Report{}, fmt.Errorf("%s: %w", dir, ErrNoReports)
	}

	merged := m.Report{
		RunID:      shards[0].RunID,
		StartedAt:  shards[0].StartedAt,
		ShardCount: 1,
		Dry:        shards[0].Dry,
	}

	for _, shard := range shards {
		if shard.StartedAt.Before(merged.StartedAt) {
			merged.StartedAt = shard.StartedAt
		}

		if shard.Duration > merged.Duration {
			merged.Duration = shard.Duration
		}

		merged.Files = append(merged.Files, shard.Files...)
	}

	sort.Slice(merged.Files, func(i, j int) bool {
		return merged.Files[i].Path < merged.Files[j].Path
	})

	if _, err := s.SaveReport(dir, merged); err != nil {
		return m.Report{}, err
	}

	// The shard patches hold the diffs; the merged report only has metadata.
	var b strings.Builder

	for i := range shards {
		data, err := os.ReadFile(filepath.Join(string(dir), fmt.Sprintf("%s%d", shardDirPrefix, shards[i].ShardIndex), patchFileName))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return m.Report{}, fmt.Errorf("read shard patch: %w", err)
		}

		b.Write(data)
	}

	if err := os.WriteFile(filepath.Join(string(dir), patchFileName), []byte(b.String()), 0o600); err != nil {
		return m.Report{}, fmt.Errorf("write patch: %w", err)
	}

	return merged, nil
}

func (s *LocalReportStore) loadShards(dir m.Path) ([]m.Report, error) {
	matches, err := filepath.Glob(filepath.Join(string(dir), shardDirPrefix+"*", reportFileName))
	if err != nil {
		return nil, fmt.Errorf("list shard reports: %w", err)
	}

	reports := make([]m.Report, 0, len(matches))

	for _, match := range matches {
		report, err := readReport(match)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ShardIndex < reports[j].ShardIndex
	})

	return reports, nil
}

func readReport(path string) (m.Report, error) {
	// #nosec G304 - path is built from the configured reports directory
	data, err := os.ReadFile(path)
	if err != nil {
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}

func patch(files []m.FileResult) string {
	var b strings.Builder

	for _, f := range files {
		b.WriteString(f.Diff)
	}

	return b.String()
}
