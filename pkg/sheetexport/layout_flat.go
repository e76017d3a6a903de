package sheetexport

import "fmt"

// flatLayout writes a table of scalars one cell per value, no merging.
type flatLayout struct{}

func (flatLayout) layout(sl *sheetLayout, rows []Row) (int, error) {
	for rowIdx, row := range rows {
		for colIdx, v := range row {
			if v.kind == KindNested {
				return rowIdx, fmt.Errorf("row %d column %d: %w", rowIdx, colIdx, ErrUnexpectedNested)
			}
			if err := sl.emit(rowIdx, rowIdx, colIdx, colIdx, v); err != nil {
				return rowIdx, err
			}
		}
	}
	return len(rows), nil
}
