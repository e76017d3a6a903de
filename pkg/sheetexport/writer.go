package sheetexport

import (
	"fmt"
)

// MergeRegion is one rectangular block of cells showing a single value.
// Rows and columns are 0-based and inclusive.
type MergeRegion struct {
	Sheet    string  `json:"sheet"`
	RowStart int     `json:"row_start"`
	RowEnd   int     `json:"row_end"`
	ColStart int     `json:"col_start"`
	ColEnd   int     `json:"col_end"`
	Value    Value   `json:"-"`
	Style    StyleID `json:"-"`
}

// Rows returns the number of rows the region spans.
func (r MergeRegion) Rows() int { return r.RowEnd - r.RowStart + 1 }

// Cols returns the number of columns the region spans.
func (r MergeRegion) Cols() int { return r.ColEnd - r.ColStart + 1 }

// IsMerged reports whether the region covers more than one cell.
func (r MergeRegion) IsMerged() bool { return r.Rows() > 1 || r.Cols() > 1 }

// Contains reports whether the 0-based cell lies inside the region.
func (r MergeRegion) Contains(row, col int) bool {
	return row >= r.RowStart && row <= r.RowEnd && col >= r.ColStart && col <= r.ColEnd
}

// Overlaps reports whether two regions share at least one cell.
func (r MergeRegion) Overlaps(o MergeRegion) bool {
	return r.Sheet == o.Sheet &&
		r.RowStart <= o.RowEnd && o.RowStart <= r.RowEnd &&
		r.ColStart <= o.ColEnd && o.ColStart <= r.ColEnd
}

func (r MergeRegion) String() string {
	return fmt.Sprintf("%s!R%dC%d:R%dC%d=%q(%s)", r.Sheet, r.RowStart, r.ColStart, r.RowEnd, r.ColEnd, r.Value.String(), r.Style)
}

// SheetWriter receives the output of the layout engines. Widths are in
// 1/256 character units.
type SheetWriter interface {
	AddSheet(name string) error
	WriteRegion(r MergeRegion) error
	SetColumnWidth(sheet string, col int, width int) error
}

// RegionRecorder is a SheetWriter that keeps every command in memory. It
// backs layout previews and tests.
type RegionRecorder struct {
	Sheets  []string
	Regions []MergeRegion
	Widths  map[string]map[int]int
}

func NewRegionRecorder() *RegionRecorder {
	return &RegionRecorder{Widths: make(map[string]map[int]int)}
}

func (rr *RegionRecorder) AddSheet(name string) error {
	rr.Sheets = append(rr.Sheets, name)
	return nil
}

func (rr *RegionRecorder) WriteRegion(r MergeRegion) error {
	rr.Regions = append(rr.Regions, r)
	return nil
}

func (rr *RegionRecorder) SetColumnWidth(sheet string, col int, width int) error {
	if rr.Widths[sheet] == nil {
		rr.Widths[sheet] = make(map[int]int)
	}
	rr.Widths[sheet][col] = width
	return nil
}

// SheetRegions returns the regions written to one sheet, in write order.
func (rr *RegionRecorder) SheetRegions(sheet string) []MergeRegion {
	var out []MergeRegion
	for _, r := range rr.Regions {
		if r.Sheet == sheet {
			out = append(out, r)
		}
	}
	return out
}

// RegionView is the JSON shape of a region used by layout previews.
type RegionView struct {
	Sheet    string `json:"sheet"`
	RowStart int    `json:"row_start"`
	RowEnd   int    `json:"row_end"`
	ColStart int    `json:"col_start"`
	ColEnd   int    `json:"col_end"`
	Value    string `json:"value"`
	Kind     string `json:"kind"`
	Style    string `json:"style"`
}

// Views converts the recorded regions for display.
func (rr *RegionRecorder) Views() []RegionView {
	views := make([]RegionView, len(rr.Regions))
	for i, r := range rr.Regions {
		views[i] = RegionView{
			Sheet:    r.Sheet,
			RowStart: r.RowStart,
			RowEnd:   r.RowEnd,
			ColStart: r.ColStart,
			ColEnd:   r.ColEnd,
			Value:    r.Value.String(),
			Kind:     r.Value.Kind().String(),
			Style:    r.Style.String(),
		}
	}
	return views
}
