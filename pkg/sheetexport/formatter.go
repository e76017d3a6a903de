package sheetexport

import (
	"time"
)

// StyleID names one of the cell styles an export uses.
type StyleID uint8

const (
	StyleDefault StyleID = iota
	StyleDateTime
	StyleDate
	StyleTime
	StyleFont
)

var styleNames = [...]string{
	StyleDefault:  "default",
	StyleDateTime: "datetime",
	StyleDate:     "date",
	StyleTime:     "time",
	StyleFont:     "font",
}

func (s StyleID) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "style?"
}

// NumberFormat returns the workbook number format bound to the style, or ""
// for styles that keep the general format.
func (s StyleID) NumberFormat() string {
	switch s {
	case StyleDateTime:
		return "yyyy-mm-dd hh:mm:ss"
	case StyleDate:
		return "yyyy-mm-dd"
	case StyleTime:
		return "hh:mm:ss"
	}
	return ""
}

// CellFormatter maps a raw value to the value that is written and the style
// it is written with.
type CellFormatter struct {
	blanksForNone bool
	hasFont       bool
	loc           *time.Location
}

func NewCellFormatter(cfg Config) *CellFormatter {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &CellFormatter{
		blanksForNone: cfg.BlanksForNone,
		hasFont:       cfg.Font != "",
		loc:           loc,
	}
}

// Classify is total over every scalar kind; it never fails.
func (cf *CellFormatter) Classify(v Value) (Value, StyleID) {
	if v.kind == KindNull && cf.blanksForNone {
		v = Text("")
	}

	switch v.kind {
	case KindDateTime:
		if v.aware {
			v = NaiveDateTime(makeNaive(v.t, cf.loc))
		}
		return v, StyleDateTime
	case KindDate:
		return v, StyleDate
	case KindTime:
		return v, StyleTime
	}

	if cf.hasFont {
		return v, StyleFont
	}
	return v, StyleDefault
}

// makeNaive returns the wall clock of t in loc, stored as UTC so no later
// conversion shifts it again.
func makeNaive(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}
