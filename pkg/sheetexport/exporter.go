package sheetexport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("invalid format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// SheetStats summarises the layout of one sheet.
type SheetStats struct {
	Name    string      `json:"name"`
	Layout  LayoutMode  `json:"layout"`
	Rows    int         `json:"rows"`
	Regions int         `json:"regions"`
	Merged  int         `json:"merged"`
	Widths  map[int]int `json:"widths,omitempty"`
}

// Exporter turns documents into workbooks or CSV. It holds only its
// configuration; every call builds fresh layout state, so one Exporter can
// serve concurrent calls.
type Exporter struct {
	cfg Config
}

func New(opts ...Option) *Exporter {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Exporter{cfg: cfg}
}

func (e *Exporter) Config() Config {
	return e.cfg
}

// Wrap puts a single unnamed dataset into a document under the configured
// sheet name.
func (e *Exporter) Wrap(rows []Row) *Document {
	doc := NewDocument()
	doc.AddSheet(e.cfg.SheetName, rows)
	return doc
}

// Layout runs every sheet of doc through its layout engine into w.
func (e *Exporter) Layout(ctx context.Context, doc *Document, w SheetWriter) ([]SheetStats, error) {
	if doc == nil || doc.Len() == 0 {
		return nil, ErrNoSheets
	}
	stats := make([]SheetStats, 0, doc.Len())
	for _, sheet := range doc.Sheets() {
		st, err := e.layoutSheet(ctx, sheet, w)
		if err != nil {
			return stats, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (e *Exporter) layoutSheet(ctx context.Context, sheet *Sheet, w SheetWriter) (SheetStats, error) {
	name := sheet.Name
	if name == "" {
		name = e.cfg.SheetName
	}

	engine, mode, err := engineFor(sheet.Layout, sheet.Rows)
	if err != nil {
		return SheetStats{}, fmt.Errorf("sheet %q: %w", name, err)
	}
	if err := w.AddSheet(name); err != nil {
		return SheetStats{}, err
	}

	sl := newSheetLayout(e.cfg, name, w)
	height, err := engine.layout(sl, sheet.Rows)
	if err != nil {
		return SheetStats{}, fmt.Errorf("sheet %q: %w", name, err)
	}

	st := SheetStats{
		Name:    name,
		Layout:  mode,
		Rows:    height,
		Regions: sl.regions,
		Merged:  sl.merged,
		Widths:  sl.widths.widths,
	}
	zerolog.Ctx(ctx).Debug().
		Str("sheet", name).
		Str("layout", string(mode)).
		Int("rows", height).
		Int("regions", sl.regions).
		Int("merged", sl.merged).
		Msg("sheet laid out")
	return st, nil
}

// WriteXLSX lays out every sheet into a new workbook and writes it to w.
// Nothing is written to w when the layout fails.
func (e *Exporter) WriteXLSX(ctx context.Context, doc *Document, w io.Writer) error {
	xw, err := NewExcelWriter(e.cfg)
	if err != nil {
		return err
	}
	defer xw.Close()

	if _, err := e.Layout(ctx, doc, xw); err != nil {
		return err
	}
	if _, err := xw.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the first sheet of doc as CSV in the configured encoding.
// Output is buffered, so nothing reaches w if a field cannot be encoded.
func (e *Exporter) WriteCSV(ctx context.Context, doc *Document, w io.Writer) error {
	if doc == nil || doc.Len() == 0 {
		return ErrNoSheets
	}
	enc, err := resolveEncoding(e.cfg.Encoding)
	if err != nil {
		return err
	}

	grid := newCSVGrid()
	st, err := e.layoutSheet(ctx, doc.Sheets()[0], grid)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := grid.encode(&buf, enc, st.Rows); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// ToBytes exports doc in the given format into memory.
func (e *Exporter) ToBytes(ctx context.Context, doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = e.WriteCSV(ctx, doc, &buf)
	case FormatXLSX, "":
		err = e.WriteXLSX(ctx, doc, &buf)
	default:
		err = fmt.Errorf("invalid format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
