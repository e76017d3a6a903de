package sheetexport

// recursiveMergeLayout handles unbounded nesting. Each top-level row is
// expanded breadth-first: nested entries enqueue their sub-rows at the
// entry's column, stacked downwards from the row they belong to, while
// scalars are merged over the full height of their own row.
type recursiveMergeLayout struct{}

// pendingRow is a queued sub-row together with the grid cell its first
// entry starts at.
type pendingRow struct {
	col   int
	row   int
	cells Row
}

func (recursiveMergeLayout) layout(sl *sheetLayout, rows []Row) (int, error) {
	cursor := 0
	for _, top := range rows {
		height, err := layoutNestedRow(sl, cursor, top)
		if err != nil {
			return cursor, err
		}
		cursor += height
	}
	return cursor, nil
}

// layoutNestedRow places one top-level row at rowStart and returns the
// number of grid rows it consumed. Every region it writes lies inside
// [rowStart, rowStart+height-1].
func layoutNestedRow(sl *sheetLayout, rowStart int, top Row) (int, error) {
	rowHeight := 1
	queue := []pendingRow{{col: 0, row: rowStart, cells: top}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		merged := RowHeight(item.cells)
		if merged > rowHeight {
			rowHeight = merged
		}

		col := item.col
		for _, v := range item.cells {
			if v.kind == KindNested {
				start := item.row
				for _, sub := range v.rows {
					queue = append(queue, pendingRow{col: col, row: start, cells: sub})
					start += RowHeight(sub)
				}
				col += entrySpan(v)
				continue
			}

			if err := sl.emit(item.row, item.row+merged-1, col, col, v); err != nil {
				return rowHeight, err
			}
			col++
		}
	}
	return rowHeight, nil
}
