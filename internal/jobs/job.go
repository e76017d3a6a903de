package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/locvowork/sheetexport/internal/service"
	"github.com/locvowork/sheetexport/internal/source"
	"gopkg.in/yaml.v3"
)

// Job is one export written to Output. The format defaults to the output
// file extension.
type Job struct {
	Name                  string `yaml:"name"`
	Output                string `yaml:"output"`
	service.ExportRequest `yaml:",inline"`
}

// File is the top-level shape of a job file.
type File struct {
	// Workers overrides JOB_WORKERS for this file when positive.
	Workers int   `yaml:"workers,omitempty"`
	Jobs    []Job `yaml:"jobs"`
}

// LoadFile reads a job file. Relative output and json source paths are
// resolved against the file's directory.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.resolvePaths(filepath.Dir(path))
	return f, nil
}

// Parse decodes and validates job file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode job file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("job file defines no jobs")
	}

	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		job := &f.Jobs[i]
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("duplicate job name %q", job.Name)
		}
		seen[job.Name] = true

		if job.Output == "" {
			return nil, fmt.Errorf("job %q: output is required", job.Name)
		}
		if job.Format == "" {
			job.Format = strings.TrimPrefix(filepath.Ext(job.Output), ".")
		}
	}
	return &f, nil
}

func (f *File) resolvePaths(dir string) {
	for i := range f.Jobs {
		job := &f.Jobs[i]
		if !filepath.IsAbs(job.Output) {
			job.Output = filepath.Join(dir, job.Output)
		}
		for _, sheet := range job.Sheets {
			if sheet.Source != nil && sheet.Source.Type == source.TypeJSON && !filepath.IsAbs(sheet.Source.Path) {
				sheet.Source.Path = filepath.Join(dir, sheet.Source.Path)
			}
		}
	}
}
