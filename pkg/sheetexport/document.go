package sheetexport

import "fmt"

// Sheet is a named table of rows laid out by one engine.
type Sheet struct {
	Name   string
	Rows   []Row
	Layout LayoutMode
}

// Document is an ordered list of sheets; sheets are written in the order
// they were added. Duplicate names are not checked here, the workbook
// writer rejects them.
type Document struct {
	sheets []*Sheet
}

func NewDocument() *Document {
	return &Document{}
}

// AddSheet appends a sheet using automatic layout selection and returns it
// so the caller can adjust the layout.
func (d *Document) AddSheet(name string, rows []Row) *Sheet {
	s := &Sheet{Name: name, Rows: rows, Layout: LayoutAuto}
	d.sheets = append(d.sheets, s)
	return s
}

// AddMappedSheet flattens records with mapping and appends the result,
// prefixed by headers when given. Mapped sheets use the recursive layout.
func (d *Document) AddMappedSheet(name string, records interface{}, mapping *FieldMapping, headers Row) (*Sheet, error) {
	rows, err := Flatten(records, mapping)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	if len(headers) > 0 {
		rows = append([]Row{headers}, rows...)
	}
	s := d.AddSheet(name, rows)
	s.Layout = LayoutRecursive
	return s, nil
}

func (d *Document) Sheets() []*Sheet {
	return d.sheets
}

func (d *Document) Len() int {
	return len(d.sheets)
}
