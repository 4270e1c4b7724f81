// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synth-engine/pkg/types"
)

// ExportFile is the flat, serializable shape written for external
// consumers. Parsing an exported file yields the same
// question/answer/difficulty/score tuples that were written.
type ExportFile struct {
	RunID    string               `yaml:"run_id"`
	Status   types.RunStatus      `yaml:"status"`
	Category types.TaskCategory   `yaml:"category"`
	Summary  types.RunSummary     `yaml:"summary"`
	Pairs    []types.AcceptedPair `yaml:"pairs"`
}

// ExportYAML writes a run's dataset to dir/exported/<run-id>.yaml and
// returns the path.
func (s *Store) ExportYAML(category types.TaskCategory, res *types.RunResult) (string, error) {
	outDir := filepath.Join(s.dir, exportedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	ef := ExportFile{
		RunID:    res.RunID,
		Status:   res.Status,
		Category: category,
		Summary:  res.Summary,
		Pairs:    res.Pairs,
	}

	data, err := yaml.Marshal(ef)
	if err != nil {
		return "", fmt.Errorf("marshaling export: %w", err)
	}

	path := filepath.Join(outDir, res.RunID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// ReadExport parses an exported dataset file.
func ReadExport(path string) (*ExportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var ef ExportFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	return &ef, nil
}
