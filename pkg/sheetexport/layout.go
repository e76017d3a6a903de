package sheetexport

import (
	"fmt"
	"strings"
)

// LayoutMode selects the engine that places a sheet's rows on the grid.
type LayoutMode string

const (
	// LayoutAuto uses LayoutFlat when no entry is nested, LayoutRecursive otherwise.
	LayoutAuto      LayoutMode = "auto"
	LayoutFlat      LayoutMode = "flat"
	LayoutRowMerge  LayoutMode = "row_merge"
	LayoutRecursive LayoutMode = "recursive"
)

// ParseLayoutMode accepts the mode names used in job files and requests.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch LayoutMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutAuto:
		return LayoutAuto, nil
	case LayoutFlat:
		return LayoutFlat, nil
	case LayoutRowMerge, "rowmerge":
		return LayoutRowMerge, nil
	case LayoutRecursive, "nested":
		return LayoutRecursive, nil
	}
	return "", fmt.Errorf("invalid layout %q", s)
}

// RowHeight is the number of grid rows a row needs: 1 for a flat row, else
// the tallest nested entry. Never less than 1.
func RowHeight(row Row) int {
	height := 1
	for _, v := range row {
		if v.kind != KindNested {
			continue
		}
		if h := RowsHeight(v.rows); h > height {
			height = h
		}
	}
	return height
}

// RowsHeight is the number of grid rows a list of sibling rows needs when
// stacked vertically. An empty list still needs one row.
func RowsHeight(rows []Row) int {
	total := 0
	for _, row := range rows {
		total += RowHeight(row)
	}
	if total < 1 {
		return 1
	}
	return total
}

// ColumnSpan is the number of grid columns a row covers; nested entries
// cover as many columns as their widest sub-row.
func ColumnSpan(row Row) int {
	span := 0
	for _, v := range row {
		span += entrySpan(v)
	}
	return span
}

func entrySpan(v Value) int {
	if v.kind != KindNested {
		return 1
	}
	widest := 1
	for _, sub := range v.rows {
		if s := ColumnSpan(sub); s > widest {
			widest = s
		}
	}
	return widest
}

func hasNested(rows []Row) bool {
	for _, row := range rows {
		for _, v := range row {
			if v.kind == KindNested {
				return true
			}
		}
	}
	return false
}

// sheetLayout is the per-sheet state shared by the engines: every scalar
// goes through the formatter and the width tracker before it is written.
type sheetLayout struct {
	name      string
	formatter *CellFormatter
	widths    *WidthTracker
	writer    SheetWriter
	regions   int
	merged    int
}

func newSheetLayout(cfg Config, name string, writer SheetWriter) *sheetLayout {
	return &sheetLayout{
		name:      name,
		formatter: NewCellFormatter(cfg),
		widths:    NewWidthTracker(cfg, name, writer),
		writer:    writer,
	}
}

// emit writes v into the rectangle [rowStart,rowEnd]x[colStart,colEnd].
func (sl *sheetLayout) emit(rowStart, rowEnd, colStart, colEnd int, v Value) error {
	value, style := sl.formatter.Classify(v)
	if _, _, err := sl.widths.Observe(colStart, value); err != nil {
		return fmt.Errorf("set width of column %d: %w", colStart, err)
	}
	r := MergeRegion{
		Sheet:    sl.name,
		RowStart: rowStart,
		RowEnd:   rowEnd,
		ColStart: colStart,
		ColEnd:   colEnd,
		Value:    value,
		Style:    style,
	}
	if err := sl.writer.WriteRegion(r); err != nil {
		return fmt.Errorf("write %s: %w", r, err)
	}
	sl.regions++
	if r.IsMerged() {
		sl.merged++
	}
	return nil
}

// layoutEngine places rows starting at grid row 0 and returns the number of
// grid rows consumed.
type layoutEngine interface {
	layout(sl *sheetLayout, rows []Row) (int, error)
}

func engineFor(mode LayoutMode, rows []Row) (layoutEngine, LayoutMode, error) {
	switch mode {
	case LayoutAuto, "":
		if hasNested(rows) {
			return recursiveMergeLayout{}, LayoutRecursive, nil
		}
		return flatLayout{}, LayoutFlat, nil
	case LayoutFlat:
		return flatLayout{}, mode, nil
	case LayoutRowMerge:
		return rowMergeLayout{}, mode, nil
	case LayoutRecursive:
		return recursiveMergeLayout{}, mode, nil
	}
	return nil, mode, fmt.Errorf("invalid layout %q", mode)
}
