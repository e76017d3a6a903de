package sheetexport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxExcelColumnWidth is the widest column excelize accepts, in characters.
const maxExcelColumnWidth = 255

// ExcelWriter is the SheetWriter that renders regions into an xlsx workbook.
type ExcelWriter struct {
	file   *excelize.File
	styles *styleTable
	sheets int
}

// NewExcelWriter creates an empty workbook. It fails only when the font
// description in cfg cannot be parsed.
func NewExcelWriter(cfg Config) (*ExcelWriter, error) {
	font, err := ParseFont(cfg.Font)
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	return &ExcelWriter{
		file:   f,
		styles: newStyleTable(f, cfg, font),
	}, nil
}

// File exposes the underlying workbook.
func (w *ExcelWriter) File() *excelize.File {
	return w.file
}

// AddSheet renames the workbook's initial sheet for the first call and
// appends a new sheet for every later one.
func (w *ExcelWriter) AddSheet(name string) error {
	if w.sheets == 0 {
		if err := w.file.SetSheetName(DefaultSheetName, name); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSheetName, name, err)
		}
		if idx, err := w.file.GetSheetIndex(name); err != nil || idx == -1 {
			return fmt.Errorf("%w %q", ErrInvalidSheetName, name)
		}
	} else {
		if idx, _ := w.file.GetSheetIndex(name); idx != -1 {
			return fmt.Errorf("%w %q: duplicate sheet name", ErrInvalidSheetName, name)
		}
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSheetName, name, err)
		}
	}
	w.sheets++
	return nil
}

func (w *ExcelWriter) WriteRegion(r MergeRegion) error {
	if r.Value.IsNested() {
		return ErrUnexpectedNested
	}

	topLeft, err := excelize.CoordinatesToCellName(r.ColStart+1, r.RowStart+1)
	if err != nil {
		return err
	}
	bottomRight, err := excelize.CoordinatesToCellName(r.ColEnd+1, r.RowEnd+1)
	if err != nil {
		return err
	}

	if !r.Value.IsNull() {
		if err := w.file.SetCellValue(r.Sheet, topLeft, cellValue(r.Value)); err != nil {
			return fmt.Errorf("setting cell value: %w", err)
		}
	}
	if r.IsMerged() {
		if err := w.file.MergeCell(r.Sheet, topLeft, bottomRight); err != nil {
			return fmt.Errorf("merging cells: %w", err)
		}
	}

	styleID, err := w.styles.id(r.Style)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(r.Sheet, topLeft, bottomRight, styleID); err != nil {
		return fmt.Errorf("setting cell style: %w", err)
	}
	return nil
}

// SetColumnWidth converts width from 1/256 character units to characters.
func (w *ExcelWriter) SetColumnWidth(sheet string, col int, width int) error {
	colName, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	chars := float64(width) / WidthUnit
	if chars > maxExcelColumnWidth {
		chars = maxExcelColumnWidth
	}
	return w.file.SetColWidth(sheet, colName, colName, chars)
}

func (w *ExcelWriter) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

func (w *ExcelWriter) Close() error {
	return w.file.Close()
}

// cellValue converts a scalar into what excelize stores. Times of day become
// day fractions; dates and datetimes keep their wall clock.
func cellValue(v Value) interface{} {
	switch v.kind {
	case KindTime:
		t := v.t
		secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
		return (float64(secs) + float64(t.Nanosecond())/1e9) / 86400
	case KindDate:
		return time.Date(v.t.Year(), v.t.Month(), v.t.Day(), 0, 0, 0, 0, time.UTC)
	case KindDateTime:
		return makeNaive(v.t, v.t.Location())
	}
	return v.Interface()
}
