package sheetexport

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// span is a region's (rowStart, rowEnd, colStart, colEnd) plus its text.
type span struct {
	r0, r1, c0, c1 int
	text           string
}

func spans(regions []MergeRegion) []span {
	out := make([]span, len(regions))
	for i, r := range regions {
		out[i] = span{r.RowStart, r.RowEnd, r.ColStart, r.ColEnd, r.Value.String()}
	}
	return out
}

func layoutRows(t *testing.T, mode LayoutMode, rows []Row, opts ...Option) (*RegionRecorder, SheetStats) {
	t.Helper()
	doc := NewDocument()
	doc.AddSheet("S", rows).Layout = mode

	rec := NewRegionRecorder()
	stats, err := New(opts...).Layout(context.Background(), doc, rec)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	return rec, stats[0]
}

func TestLayout_FlatTable(t *testing.T) {
	rows := []Row{R(1, "x"), R(2, "y")}
	rec, st := layoutRows(t, LayoutAuto, rows)

	assert.Equal(t, LayoutFlat, st.Layout)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, 0, st.Merged)
	assert.Equal(t, []span{
		{0, 0, 0, 0, "1"},
		{0, 0, 1, 1, "x"},
		{1, 1, 0, 0, "2"},
		{1, 1, 1, 1, "y"},
	}, spans(rec.Regions))
	assert.Equal(t, []string{"S"}, rec.Sheets)
}

func TestLayout_FlatRejectsNested(t *testing.T) {
	rows := []Row{R("a", List(Text("b")))}
	doc := NewDocument()
	doc.AddSheet("S", rows).Layout = LayoutFlat

	_, err := New().Layout(context.Background(), doc, NewRegionRecorder())
	assert.ErrorIs(t, err, ErrUnexpectedNested)
}

func TestLayout_RowMerge(t *testing.T) {
	rows := []Row{{List(Text("a"), Text("b")), Text("shared")}}
	rec, st := layoutRows(t, LayoutRowMerge, rows)

	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, 1, st.Merged)
	assert.Equal(t, []span{
		{0, 0, 0, 0, "a"},
		{1, 1, 0, 0, "b"},
		{0, 1, 1, 1, "shared"},
	}, spans(rec.Regions))
}

func TestLayout_RowMergeTallestColumnWins(t *testing.T) {
	rows := []Row{
		{Text("k"), List(Text("a")), List(Text("x"), Text("y"), Text("z"))},
		{Text("next"), List(), Text("last")},
	}
	rec, st := layoutRows(t, LayoutRowMerge, rows)

	assert.Equal(t, 4, st.Rows)
	assert.Equal(t, []span{
		{0, 2, 0, 0, "k"},
		{0, 0, 1, 1, "a"},
		{0, 0, 2, 2, "x"},
		{1, 1, 2, 2, "y"},
		{2, 2, 2, 2, "z"},
		{3, 3, 0, 0, "next"},
		{3, 3, 2, 2, "last"},
	}, spans(rec.Regions))
}

func TestLayout_RowMergeRejectsDeepNesting(t *testing.T) {
	rows := []Row{{Nested(R("a", "b"))}}
	doc := NewDocument()
	doc.AddSheet("S", rows).Layout = LayoutRowMerge

	_, err := New().Layout(context.Background(), doc, NewRegionRecorder())
	assert.ErrorIs(t, err, ErrNestedTooDeep)
}

func TestLayout_RecursiveThreeSubRecords(t *testing.T) {
	mapping := &FieldMapping{
		FieldKey: FieldKeys{"name"},
		DataKey:  "items",
		Next:     &FieldMapping{FieldKey: FieldKeys{"sku"}},
	}
	record := Record{
		"name":  "order-1",
		"items": []Record{{"sku": "A"}, {"sku": "B"}, {"sku": "C"}},
	}
	rows, err := Flatten(record, mapping)
	require.NoError(t, err)

	rec, st := layoutRows(t, LayoutAuto, rows)
	assert.Equal(t, LayoutRecursive, st.Layout)
	assert.Equal(t, 3, st.Rows)
	assert.Equal(t, []span{
		{0, 2, 0, 0, "order-1"},
		{0, 0, 1, 1, "A"},
		{1, 1, 1, 1, "B"},
		{2, 2, 1, 1, "C"},
	}, spans(rec.Regions))
}

func TestLayout_RecursiveDeepTree(t *testing.T) {
	rows := []Row{
		{Text("o1"), Nested(
			Row{Text("i1"), Nested(R("n1"), R("n2"))},
			Row{Text("i2"), Nested()},
		)},
		{Text("o2"), Nested()},
	}
	rec, st := layoutRows(t, LayoutRecursive, rows)

	assert.Equal(t, 4, st.Rows)
	assert.ElementsMatch(t, []span{
		{0, 2, 0, 0, "o1"},
		{0, 1, 1, 1, "i1"},
		{2, 2, 1, 1, "i2"},
		{0, 0, 2, 2, "n1"},
		{1, 1, 2, 2, "n2"},
		{3, 3, 0, 0, "o2"},
	}, spans(rec.Regions))
}

func TestLayout_RecursiveSiblingsStayInParentBand(t *testing.T) {
	// The first sibling holds a deeper branch that is expanded after the
	// second sibling has been placed; it must still land in its own row.
	inner := Nested(R("a"))
	rows := []Row{{Nested(Row{inner}, R("x"))}}
	rec, st := layoutRows(t, LayoutRecursive, rows)

	assert.Equal(t, 2, st.Rows)
	assert.ElementsMatch(t, []span{
		{1, 1, 0, 0, "x"},
		{0, 0, 0, 0, "a"},
	}, spans(rec.Regions))
}

func TestLayout_RecursiveWideNestedEntryShiftsColumns(t *testing.T) {
	rows := []Row{{Nested(R("a", "b"), R("c")), Text("z")}}
	rec, _ := layoutRows(t, LayoutRecursive, rows)

	assert.ElementsMatch(t, []span{
		{0, 1, 2, 2, "z"},
		{0, 0, 0, 0, "a"},
		{0, 0, 1, 1, "b"},
		{1, 1, 0, 0, "c"},
	}, spans(rec.Regions))
}

func TestLayout_EmptyNestedList(t *testing.T) {
	rows := []Row{{Text("x"), Nested()}, R("y")}
	rec, st := layoutRows(t, LayoutRecursive, rows)

	assert.Equal(t, 1, RowHeight(rows[0]))
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, []span{
		{0, 0, 0, 0, "x"},
		{1, 1, 0, 0, "y"},
	}, spans(rec.Regions))
}

func TestRowHeight(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want int
	}{
		{"empty row", Row{}, 1},
		{"scalars", R(1, 2, 3), 1},
		{"empty nested", Row{Nested()}, 1},
		{"list", Row{List(Int(1), Int(2), Int(3))}, 3},
		{"tallest entry", Row{List(Int(1)), List(Int(1), Int(2))}, 2},
		{"sums nested rows", Row{Nested(Row{List(Int(1), Int(2))}, R(3))}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RowHeight(tt.row))
		})
	}
}

func TestColumnSpan(t *testing.T) {
	assert.Equal(t, 0, ColumnSpan(Row{}))
	assert.Equal(t, 2, ColumnSpan(R(1, 2)))
	assert.Equal(t, 3, ColumnSpan(Row{Nested(R(1, 2), R(3)), Int(4)}))
	assert.Equal(t, 1, ColumnSpan(Row{Nested()}))
}

func TestParseLayoutMode(t *testing.T) {
	for in, want := range map[string]LayoutMode{
		"":          LayoutAuto,
		"FLAT":      LayoutFlat,
		"row_merge": LayoutRowMerge,
		"nested":    LayoutRecursive,
	} {
		got, err := ParseLayoutMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLayoutMode("diagonal")
	assert.Error(t, err)
}

// randomRow builds a row whose entries are scalars or, above the depth
// limit, nested lists of random rows.
func randomRow(rng *rand.Rand, depth int) Row {
	n := rng.Intn(4)
	if depth == 0 {
		n++
	}
	row := make(Row, n)
	for i := range row {
		if depth < 3 && rng.Intn(3) == 0 {
			subs := make([]Row, rng.Intn(4))
			for j := range subs {
				subs[j] = randomRow(rng, depth+1)
			}
			row[i] = Nested(subs...)
			continue
		}
		row[i] = Text(fmt.Sprintf("v%d", rng.Intn(1000)))
	}
	return row
}

func TestLayout_RecursiveProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		rows := make([]Row, 1+rng.Intn(4))
		for j := range rows {
			rows[j] = randomRow(rng, 0)
		}

		rec, st := layoutRows(t, LayoutRecursive, rows)
		require.Equal(t, RowsHeight(rows), st.Rows, "case %d: height", i)

		regions := rec.Regions
		for a := range regions {
			require.GreaterOrEqual(t, regions[a].Rows(), 1)
			require.GreaterOrEqual(t, regions[a].Cols(), 1)
			require.Less(t, regions[a].RowEnd, st.Rows, "case %d: %s outside sheet", i, regions[a])
			for b := a + 1; b < len(regions); b++ {
				require.False(t, regions[a].Overlaps(regions[b]),
					"case %d: %s overlaps %s", i, regions[a], regions[b])
			}
		}

		// Every top-level row stays inside its own band.
		cursor := 0
		for j, row := range rows {
			single, singleStats := layoutRows(t, LayoutRecursive, []Row{row})
			require.Equal(t, RowHeight(row), singleStats.Rows, "case %d row %d", i, j)
			for _, r := range single.Regions {
				require.Less(t, r.RowEnd, RowHeight(row))
			}
			cursor += singleStats.Rows
		}
		require.Equal(t, st.Rows, cursor)
	}
}

func TestLayout_NoSheets(t *testing.T) {
	_, err := New().Layout(context.Background(), NewDocument(), NewRegionRecorder())
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestLayout_SheetsInOrder(t *testing.T) {
	doc := NewDocument()
	doc.AddSheet("Orders", []Row{R(1)})
	doc.AddSheet("Notes", []Row{R("n")})
	doc.AddSheet("", []Row{R("default")})

	rec := NewRegionRecorder()
	stats, err := New(WithSheetName("Fallback")).Layout(context.Background(), doc, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"Orders", "Notes", "Fallback"}, rec.Sheets)
	require.Len(t, stats, 3)
	assert.Equal(t, "Fallback", stats[2].Name)
	assert.Len(t, rec.SheetRegions("Notes"), 1)
}
