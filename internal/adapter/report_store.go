package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "forgemut.dev/pkg/forgemut/internal/model"
)

// ReportStore persists the machine-readable report of a run.
type ReportStore interface {
	SaveReport(ctx context.Context, path m.Path, report m.RunReport) error
	LoadReport(ctx context.Context, path m.Path) (m.RunReport, error)
}

// LocalReportStore stores reports as YAML files.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReport writes the report to path, replacing any previous content.
func (s *LocalReportStore) SaveReport(ctx context.Context, path m.Path, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return fmt.Errorf("write report: %w", err)
	}

	slog.Debug("Saved run report", "path", path, "mutants", len(report.Mutants))

	return nil
}

// LoadReport reads a report written by SaveReport.
func (s *LocalReportStore) LoadReport(ctx context.Context, path m.Path) (m.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return m.RunReport{}, err
	}

	// #nosec G304 - path is a report location derived from the log folder
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
