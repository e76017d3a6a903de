package dataflow_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/locvowork/sheetexport/pkg/dataflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_MapAndCollect(t *testing.T) {
	ctx := context.Background()

	type row struct {
		ID   string
		Name string
	}
	source := dataflow.From(ctx, "1,Alice", "2,Bob", "broken", "3,Charlie")

	var dropped int32
	parsed := dataflow.Map(ctx, source, func(_ context.Context, s string) (row, error) {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return row{}, fmt.Errorf("invalid format %q", s)
		}
		return row{ID: parts[0], Name: parts[1]}, nil
	}, dataflow.WithWorkers(3), dataflow.WithErrorHandler(func(error) {
		atomic.AddInt32(&dropped, 1)
	}))

	rows, err := dataflow.Collect(ctx, parsed)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dropped))

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "Charlie", rows[2].Name)
}

func TestPipeline_CollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := dataflow.Collect(ctx, dataflow.Stream[int](make(chan int)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}
