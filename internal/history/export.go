// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export is the document written by ExportYAML.
type Export struct {
	Runs   []Run   `yaml:"runs"`
	Posted []Entry `yaml:"posted"`
}

// exportRuns bounds the runs included in an export.
const exportRuns = 100000

// ExportYAML writes all runs and posted papers to w.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	runs, err := s.Recent(ctx, exportRuns)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	entries, err := s.Entries(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	data, err := yaml.Marshal(Export{Runs: runs, Posted: entries})
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
