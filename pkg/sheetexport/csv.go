package sheetexport

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvEncoding is a resolved output encoding. A nil enc writes UTF-8 as is.
type csvEncoding struct {
	name string
	enc  encoding.Encoding
	bom  bool
}

// encodingAliases maps codec spellings missing from the IANA registry to
// their registered name.
var encodingAliases = map[string]string{
	"ascii":   "us-ascii",
	"latin-1": "iso-8859-1",
	"latin_1": "iso-8859-1",
	"l1":      "iso-8859-1",
	"cp1250":  "windows-1250",
	"cp1251":  "windows-1251",
	"cp1252":  "windows-1252",
	"cp1253":  "windows-1253",
	"cp1254":  "windows-1254",
	"cp1255":  "windows-1255",
	"cp1256":  "windows-1256",
	"cp1257":  "windows-1257",
	"cp1258":  "windows-1258",
	"sjis":    "shift_jis",
	"cp932":   "windows-31j",
}

// resolveEncoding looks a name up in the IANA registry, after mapping a few
// common aliases. Unknown names are an error; no other encoding is guessed.
func resolveEncoding(name string) (csvEncoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "utf-8", "utf8":
		return csvEncoding{name: DefaultEncoding}, nil
	case EncodingUTF8BOM, "utf8-sig":
		return csvEncoding{name: EncodingUTF8BOM, bom: true}, nil
	}

	lookup := normalized
	if alias, ok := encodingAliases[lookup]; ok {
		lookup = alias
	}
	if enc, err := ianaindex.IANA.Encoding(lookup); err == nil && enc != nil {
		return csvEncoding{name: normalized, enc: enc}, nil
	}
	return csvEncoding{}, fmt.Errorf("%w %q", ErrUnknownEncoding, name)
}

// csvGrid is a SheetWriter that materialises the first sheet it is given as
// a grid of cells. A region's value lands in its top-left cell; the cells it
// covers stay empty.
type csvGrid struct {
	sheet string
	cells map[int]map[int]string
	rows  int
}

func newCSVGrid() *csvGrid {
	return &csvGrid{cells: make(map[int]map[int]string)}
}

func (g *csvGrid) AddSheet(name string) error {
	if g.sheet == "" {
		g.sheet = name
	}
	return nil
}

func (g *csvGrid) WriteRegion(r MergeRegion) error {
	if r.Sheet != g.sheet {
		return nil
	}
	if r.Value.IsNested() {
		return ErrUnexpectedNested
	}
	row := g.cells[r.RowStart]
	if row == nil {
		row = make(map[int]string)
		g.cells[r.RowStart] = row
	}
	row[r.ColStart] = r.Value.String()
	if r.RowEnd+1 > g.rows {
		g.rows = r.RowEnd + 1
	}
	return nil
}

// SetColumnWidth is a no-op; delimited text has no column widths.
func (g *csvGrid) SetColumnWidth(string, int, int) error {
	return nil
}

// encode writes height lines (or more, if regions reach further). Every
// field is double-quoted with embedded quotes doubled and each line ends at
// its last written column.
func (g *csvGrid) encode(w io.Writer, enc csvEncoding, height int) error {
	if g.rows > height {
		height = g.rows
	}

	bw := bufio.NewWriter(w)
	if enc.bom {
		if _, err := bw.Write(utf8BOM); err != nil {
			return err
		}
	}

	var out io.Writer = bw
	var tw *transform.Writer
	if enc.enc != nil {
		tw = transform.NewWriter(bw, enc.enc.NewEncoder())
		out = tw
	}

	for rowIdx := 0; rowIdx < height; rowIdx++ {
		row := g.cells[rowIdx]
		last := -1
		for col := range row {
			if col > last {
				last = col
			}
		}

		if _, err := io.WriteString(out, `"`); err != nil {
			return err
		}
		for col := 0; col <= last; col++ {
			if col > 0 {
				if _, err := io.WriteString(out, `","`); err != nil {
					return err
				}
			}
			field := strings.ReplaceAll(row[col], `"`, `""`)
			if _, err := io.WriteString(out, field); err != nil {
				return &EncodeError{Sheet: g.sheet, Row: rowIdx, Col: col, Encoding: enc.name, Err: err}
			}
		}
		if _, err := io.WriteString(out, "\"\n"); err != nil {
			return err
		}
	}

	if tw != nil {
		if err := tw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}
