package sheetexport

import "fmt"

// rowMergeLayout handles one level of nesting: an entry is a scalar or a
// vertical group of scalars. Scalars are merged down to the height of the
// row's tallest group; group members are stacked one per row.
type rowMergeLayout struct{}

func (rowMergeLayout) layout(sl *sheetLayout, rows []Row) (int, error) {
	cursor := 0
	for rowIdx, row := range rows {
		height := 1
		for colIdx, v := range row {
			if v.kind != KindNested {
				continue
			}
			for _, member := range v.rows {
				if len(member) != 1 || member[0].kind == KindNested {
					return cursor, fmt.Errorf("row %d column %d: %w", rowIdx, colIdx, ErrNestedTooDeep)
				}
			}
			if n := len(v.rows); n > height {
				height = n
			}
		}

		for colIdx, v := range row {
			if v.kind != KindNested {
				if err := sl.emit(cursor, cursor+height-1, colIdx, colIdx, v); err != nil {
					return cursor, err
				}
				continue
			}
			for i, member := range v.rows {
				if err := sl.emit(cursor+i, cursor+i, colIdx, colIdx, member[0]); err != nil {
					return cursor, err
				}
			}
		}
		cursor += height
	}
	return cursor, nil
}
