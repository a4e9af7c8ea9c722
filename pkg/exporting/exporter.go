package exporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/utils"
)

// Exporter writes samples for one session to a single output file.
type Exporter struct {
	writer Writer
	path   string
}

// NewExporter resolves the output path from the config, creates the
// output directory and initializes the format writer.
func NewExporter(cfg *utils.Config) (*Exporter, error) {
	format, ok := Get(cfg.Format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", cfg.Format)
	}

	path := cfg.OutputFile
	if path == "" {
		path = cfg.SessionID + GetExtension(cfg.Format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	writer := format.Writer()
	if err := writer.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize %s writer: %w", cfg.Format, err)
	}
	return &Exporter{writer: writer, path: path}, nil
}

// Write flattens one sample and appends it to the output file.
func (e *Exporter) Write(sample *metrics.Sample) error {
	return e.writer.Write(FlattenRecord(ToRecord(sample)))
}

// WriteStatic writes the session's host description next to the data
// file as <base>_static.json.
func (e *Exporter) WriteStatic(static *metrics.Static) error {
	data, err := json.MarshalIndent(static, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal static info: %w", err)
	}
	return os.WriteFile(basePath(e.path)+"_static.json", data, 0o644)
}

func (e *Exporter) Flush() error { return e.writer.Flush() }
func (e *Exporter) Close() error { return e.writer.Close() }
func (e *Exporter) Path() string { return e.path }

// basePath strips the extension so sibling files share the session name.
func basePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
