package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/sheetexport/internal/service"
	"github.com/locvowork/sheetexport/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobFile = `
workers: 2
jobs:
  - name: orders
    output: out/orders.csv
    overrides:
      encoding: utf-8-sig
    sheets:
      - name: Orders
        headers: [Order, SKU]
        mapping:
          field_key: name
          data_key: items
          next:
            field_key: [sku]
        source:
          type: json
          path: orders.json
  - name: inline
    output: out/inline.xlsx
    sheets:
      - name: Plain
        rows:
          - [1, a]
          - [2, b]
  - name: broken
    output: out/broken.csv
    sheets:
      - name: Bad
        columns: [missing]
        source:
          type: inline
          records:
            - present: 1
`

func writeJobFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"),
		[]byte(`[{"name": "o-1", "items": [{"sku": "A"}, {"sku": "B"}]}]`), 0o600))
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobFile), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeJobFile(t)
	dir := filepath.Dir(path)

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Workers)
	require.Len(t, f.Jobs, 3)

	orders := f.Jobs[0]
	assert.Equal(t, filepath.Join(dir, "out", "orders.csv"), orders.Output)
	assert.Equal(t, "csv", orders.Format)
	require.NotNil(t, orders.Overrides.Encoding)
	assert.Equal(t, "utf-8-sig", *orders.Overrides.Encoding)
	require.Len(t, orders.Sheets, 1)
	assert.Equal(t, source.TypeJSON, orders.Sheets[0].Source.Type)
	assert.Equal(t, filepath.Join(dir, "orders.json"), orders.Sheets[0].Source.Path)
	assert.Equal(t, 2, orders.Sheets[0].Mapping.Depth())

	assert.Equal(t, "xlsx", f.Jobs[1].Format)
	assert.Equal(t, [][]interface{}{{1, "a"}, {2, "b"}}, f.Jobs[1].Sheets[0].Rows)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no jobs":        "jobs: []",
		"missing output": "jobs:\n  - name: a\n",
		"duplicate":      "jobs:\n  - name: a\n    output: a.csv\n  - name: a\n    output: b.csv\n",
		"not yaml":       "jobs: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestParse_DefaultNames(t *testing.T) {
	f, err := Parse([]byte("jobs:\n  - output: a.csv\n  - output: b.xlsx\n"))
	require.NoError(t, err)
	assert.Equal(t, "job-1", f.Jobs[0].Name)
	assert.Equal(t, "job-2", f.Jobs[1].Name)
}

func TestRunner_Run(t *testing.T) {
	path := writeJobFile(t)
	dir := filepath.Dir(path)
	f, err := LoadFile(path)
	require.NoError(t, err)

	runner := NewRunner(service.NewExportService(nil, source.Clients{}), f.Workers)
	outcomes, err := runner.Run(context.Background(), f.Jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, []string{"orders", "inline", "broken"}, []string{outcomes[0].Job, outcomes[1].Job, outcomes[2].Job})
	assert.Equal(t, 1, Failed(outcomes))

	require.NoError(t, outcomes[0].Err)
	data, err := os.ReadFile(filepath.Join(dir, "out", "orders.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\xef\xbb\xbf\"Order\",\"SKU\"\n\"o-1\",\"A\"\n\"\",\"B\"\n", string(data))
	assert.Equal(t, len(data), outcomes[0].Bytes)

	require.NoError(t, outcomes[1].Err)
	_, err = os.Stat(filepath.Join(dir, "out", "inline.xlsx"))
	assert.NoError(t, err)

	assert.Error(t, outcomes[2].Err)
	_, err = os.Stat(filepath.Join(dir, "out", "broken.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(service.NewExportService(nil, source.Clients{}), 1).Run(ctx, []Job{{Name: "a", Output: "a.csv"}})
	assert.ErrorIs(t, err, context.Canceled)
}
