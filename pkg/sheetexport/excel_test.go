package sheetexport

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, e *Exporter, doc *Document) *excelize.File {
	t.Helper()
	data, err := e.ToBytes(context.Background(), doc, FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteXLSX_FlatTable(t *testing.T) {
	e := New(WithSheetName("Data"))
	f := openWorkbook(t, e, e.Wrap([]Row{R(1, "x"), R(2, "y")}))

	assert.Equal(t, []string{"Data"}, f.GetSheetList())
	for cell, want := range map[string]string{"A1": "1", "B1": "x", "A2": "2", "B2": "y"} {
		got, err := f.GetCellValue("Data", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
	merges, err := f.GetMergeCells("Data")
	require.NoError(t, err)
	assert.Empty(t, merges)
}

func TestWriteXLSX_NestedMerges(t *testing.T) {
	mapping := &FieldMapping{
		FieldKey: FieldKeys{"name"},
		DataKey:  "items",
		Next:     &FieldMapping{FieldKey: FieldKeys{"sku"}},
	}
	doc := NewDocument()
	_, err := doc.AddMappedSheet("Orders", []Record{
		{"name": "order-1", "items": []Record{{"sku": "A"}, {"sku": "B"}, {"sku": "C"}}},
		{"name": "order-2", "items": []Record{{"sku": "D"}}},
	}, mapping, R("Order", "SKU"))
	require.NoError(t, err)
	doc.AddSheet("Notes", []Row{R("n")})

	f := openWorkbook(t, New(), doc)
	assert.Equal(t, []string{"Orders", "Notes"}, f.GetSheetList())

	merges, err := f.GetMergeCells("Orders")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "A2", merges[0].GetStartAxis())
	assert.Equal(t, "A4", merges[0].GetEndAxis())
	assert.Equal(t, "order-1", merges[0].GetCellValue())

	for cell, want := range map[string]string{"A1": "Order", "B1": "SKU", "B2": "A", "B3": "B", "B4": "C", "A5": "order-2", "B5": "D"} {
		got, err := f.GetCellValue("Orders", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestWriteXLSX_ColumnWidths(t *testing.T) {
	e := New(WithAutoAdjustWidth(true), WithMaxColumnWidth(20*WidthUnit))
	f := openWorkbook(t, e, e.Wrap([]Row{
		R("hello world", "漢字", "short"),
		R("hi", "x", "this text is far wider than the limit"),
	}))

	for col, want := range map[string]float64{"A": 11, "B": 4, "C": 20} {
		got, err := f.GetColWidth(DefaultSheetName, col)
		require.NoError(t, err)
		assert.Equal(t, want, got, col)
	}
}

func TestWriteXLSX_Styles(t *testing.T) {
	ts := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	e := New(
		WithFont("bold on, name Arial, height 240"),
		WithAlignment(HorzCenter, VertTop),
	)
	f := openWorkbook(t, e, e.Wrap([]Row{{Text("label"), NaiveDateTime(ts), TimeOfDay(ts)}}))

	styleOf := func(cell string) *excelize.Style {
		id, err := f.GetCellStyle(DefaultSheetName, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		return style
	}

	text := styleOf("A1")
	require.NotNil(t, text.Font)
	assert.True(t, text.Font.Bold)
	assert.Equal(t, "Arial", text.Font.Family)
	assert.Equal(t, 12.0, text.Font.Size)
	require.NotNil(t, text.Alignment)
	assert.Equal(t, "center", text.Alignment.Horizontal)
	assert.Equal(t, "top", text.Alignment.Vertical)

	dt := styleOf("B1")
	require.NotNil(t, dt.CustomNumFmt)
	assert.Equal(t, "yyyy-mm-dd hh:mm:ss", *dt.CustomNumFmt)

	raw, err := f.GetCellValue(DefaultSheetName, "C1", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.5", raw)
}

func TestWriteXLSX_Errors(t *testing.T) {
	t.Run("duplicate sheet names", func(t *testing.T) {
		doc := NewDocument()
		doc.AddSheet("A", []Row{R(1)})
		doc.AddSheet("A", []Row{R(2)})
		_, err := New().ToBytes(context.Background(), doc, FormatXLSX)
		assert.ErrorIs(t, err, ErrInvalidSheetName)
	})

	t.Run("sheet names excel rejects", func(t *testing.T) {
		for _, name := range []string{strings.Repeat("x", 32), "a/b", "'quoted'"} {
			doc := NewDocument()
			doc.AddSheet(name, []Row{R(1)})
			_, err := New().ToBytes(context.Background(), doc, FormatXLSX)
			assert.ErrorIs(t, err, ErrInvalidSheetName, name)

			doc = NewDocument()
			doc.AddSheet("ok", []Row{R(1)})
			doc.AddSheet(name, []Row{R(2)})
			_, err = New().ToBytes(context.Background(), doc, FormatXLSX)
			assert.ErrorIs(t, err, ErrInvalidSheetName, name)
		}
	})

	t.Run("invalid font", func(t *testing.T) {
		e := New(WithFont("sparkly on"))
		_, err := e.ToBytes(context.Background(), e.Wrap([]Row{R(1)}), FormatXLSX)
		assert.Error(t, err)
	})

	t.Run("no sheets", func(t *testing.T) {
		_, err := New().ToBytes(context.Background(), NewDocument(), FormatXLSX)
		assert.ErrorIs(t, err, ErrNoSheets)
	})
}

func TestParseFont(t *testing.T) {
	font, err := ParseFont("font: bold on, italic true, underline on, name Times New Roman, height 200, colour #1f4e79")
	require.NoError(t, err)
	assert.True(t, font.Bold)
	assert.True(t, font.Italic)
	assert.Equal(t, "single", font.Underline)
	assert.Equal(t, "Times New Roman", font.Family)
	assert.Equal(t, 10.0, font.Size)
	assert.Equal(t, "1F4E79", font.Color)

	none, err := ParseFont("  ")
	require.NoError(t, err)
	assert.Nil(t, none)

	for _, bad := range []string{"bold maybe", "height tall", "color ultraviolet", "glow on"} {
		_, err := ParseFont(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "text/csv", f.ContentType())
	assert.Equal(t, ".csv", f.Extension())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("xls")
	assert.Error(t, err)
}
