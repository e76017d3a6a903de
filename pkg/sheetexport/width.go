package sheetexport

import (
	"github.com/mattn/go-runewidth"
)

// widthCondition fixes the ambiguous-width policy so results do not depend
// on the process locale.
var widthCondition = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// DisplayWidth estimates how many character cells s occupies on screen:
// wide and fullwidth runes count 2, every other rune counts 1.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		if widthCondition.RuneWidth(r) >= 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// WidthTracker keeps the running maximum width of every column of one sheet
// and pushes changes to the sheet writer.
type WidthTracker struct {
	enabled bool
	min     int
	max     int
	sheet   string
	writer  SheetWriter
	widths  map[int]int
}

func NewWidthTracker(cfg Config, sheet string, writer SheetWriter) *WidthTracker {
	maxWidth := cfg.MaxColumnWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxColumnWidth
	}
	return &WidthTracker{
		enabled: cfg.AutoAdjustWidth,
		min:     cfg.MinCellWidth,
		max:     maxWidth,
		sheet:   sheet,
		writer:  writer,
		widths:  make(map[int]int),
	}
}

// Observe measures v for column col. It returns the new column width and
// true when the width grew, in which case the writer has been told.
func (t *WidthTracker) Observe(col int, v Value) (int, bool, error) {
	if !t.enabled {
		return 0, false, nil
	}

	width := DisplayWidth(v.String()) * WidthUnit
	if width > t.max {
		width = t.max
	}
	if width < t.min {
		width = t.min
	}
	current := t.widths[col]
	if width <= current {
		return current, false, nil
	}

	t.widths[col] = width
	if t.writer != nil {
		if err := t.writer.SetColumnWidth(t.sheet, col, width); err != nil {
			return width, true, err
		}
	}
	return width, true, nil
}

// Width returns the tracked width of col, 0 when nothing was measured.
func (t *WidthTracker) Width(col int) int {
	return t.widths[col]
}
