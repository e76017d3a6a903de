package sheetexport

import (
	"fmt"
	"strings"
	"time"
)

const (
	// WidthUnit is the number of column-width units per character (1/256 of
	// the zero glyph in the default font).
	WidthUnit = 256
	// DefaultMaxColumnWidth is the widest column a workbook accepts, 255 characters.
	DefaultMaxColumnWidth = 255 * WidthUnit
	DefaultSheetName      = "Sheet1"
	DefaultEncoding       = "utf-8"
	// EncodingUTF8BOM writes a UTF-8 byte order mark before CSV output.
	EncodingUTF8BOM = "utf-8-sig"
)

// HorizontalAlignment values accepted by the horz option.
type HorizontalAlignment string

const (
	HorzGeneral HorizontalAlignment = "general"
	HorzLeft    HorizontalAlignment = "left"
	HorzCenter  HorizontalAlignment = "center"
	HorzRight   HorizontalAlignment = "right"
	HorzFill    HorizontalAlignment = "fill"
	HorzJustify HorizontalAlignment = "justify"
)

// VerticalAlignment values accepted by the vert option.
type VerticalAlignment string

const (
	VertTop     VerticalAlignment = "top"
	VertCenter  VerticalAlignment = "center"
	VertBottom  VerticalAlignment = "bottom"
	VertJustify VerticalAlignment = "justify"
)

// ParseHorizontal accepts the alignment names used by xlwt and excelize.
func ParseHorizontal(s string) (HorizontalAlignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return HorzGeneral, nil
	case "left":
		return HorzLeft, nil
	case "center", "centre":
		return HorzCenter, nil
	case "right":
		return HorzRight, nil
	case "fill", "filled":
		return HorzFill, nil
	case "justify", "justified":
		return HorzJustify, nil
	}
	return "", fmt.Errorf("invalid horizontal alignment %q", s)
}

// ParseVertical accepts the alignment names used by xlwt and excelize.
func ParseVertical(s string) (VerticalAlignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom":
		return VertBottom, nil
	case "top":
		return VertTop, nil
	case "center", "centre", "middle":
		return VertCenter, nil
	case "justify", "justified":
		return VertJustify, nil
	}
	return "", fmt.Errorf("invalid vertical alignment %q", s)
}

// Config holds the per-export settings. It is copied into every export call
// and never shared between calls.
type Config struct {
	Encoding        string
	SheetName       string
	Font            string
	BlanksForNone   bool
	AutoAdjustWidth bool
	MinCellWidth    int
	MaxColumnWidth  int
	Horz            HorizontalAlignment
	Vert            VerticalAlignment
	// Location is the zone aware datetimes are converted into before they are
	// written as naive wall-clock values.
	Location *time.Location
}

// DefaultConfig returns the settings used when no option overrides them.
func DefaultConfig() Config {
	return Config{
		Encoding:       DefaultEncoding,
		SheetName:      DefaultSheetName,
		BlanksForNone:  true,
		MaxColumnWidth: DefaultMaxColumnWidth,
		Horz:           HorzGeneral,
		Vert:           VertBottom,
		Location:       time.UTC,
	}
}

// Option is a functional option for an Exporter.
type Option func(*Config)

func WithEncoding(encoding string) Option {
	return func(c *Config) {
		c.Encoding = encoding
	}
}

func WithSheetName(name string) Option {
	return func(c *Config) {
		c.SheetName = name
	}
}

// WithFont sets an xlwt-style font description, e.g. "bold on, name Arial".
func WithFont(font string) Option {
	return func(c *Config) {
		c.Font = font
	}
}

func WithBlanksForNone(enabled bool) Option {
	return func(c *Config) {
		c.BlanksForNone = enabled
	}
}

func WithAutoAdjustWidth(enabled bool) Option {
	return func(c *Config) {
		c.AutoAdjustWidth = enabled
	}
}

// WithMinCellWidth sets the width floor in 1/256 character units.
func WithMinCellWidth(width int) Option {
	return func(c *Config) {
		if width >= 0 {
			c.MinCellWidth = width
		}
	}
}

// WithMaxColumnWidth sets the width ceiling in 1/256 character units.
func WithMaxColumnWidth(width int) Option {
	return func(c *Config) {
		if width > 0 {
			c.MaxColumnWidth = width
		}
	}
}

func WithAlignment(horz HorizontalAlignment, vert VerticalAlignment) Option {
	return func(c *Config) {
		c.Horz = horz
		c.Vert = vert
	}
}

// WithHorizontal sets the horizontal alignment and keeps the vertical one.
func WithHorizontal(horz HorizontalAlignment) Option {
	return func(c *Config) {
		c.Horz = horz
	}
}

// WithVertical sets the vertical alignment and keeps the horizontal one.
func WithVertical(vert VerticalAlignment) Option {
	return func(c *Config) {
		c.Vert = vert
	}
}

// WithLocation sets the zone used to make aware datetimes naive.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		if loc != nil {
			c.Location = loc
		}
	}
}

// Overrides carries optional settings decoded from a request body or a job
// file. Nil fields leave the exporter defaults untouched.
type Overrides struct {
	Encoding        *string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	SheetName       *string `json:"sheet_name,omitempty" yaml:"sheet_name,omitempty"`
	Font            *string `json:"font,omitempty" yaml:"font,omitempty"`
	BlanksForNone   *bool   `json:"blanks_for_none,omitempty" yaml:"blanks_for_none,omitempty"`
	AutoAdjustWidth *bool   `json:"auto_adjust_width,omitempty" yaml:"auto_adjust_width,omitempty"`
	MinCellWidth    *int    `json:"min_cell_width,omitempty" yaml:"min_cell_width,omitempty"`
	MaxColumnWidth  *int    `json:"max_column_width,omitempty" yaml:"max_column_width,omitempty"`
	Horz            *string `json:"horz,omitempty" yaml:"horz,omitempty"`
	Vert            *string `json:"vert,omitempty" yaml:"vert,omitempty"`
	TimeZone        *string `json:"time_zone,omitempty" yaml:"time_zone,omitempty"`
}

// Options converts the overrides into exporter options, validating the
// alignment and time zone names.
func (o Overrides) Options() ([]Option, error) {
	var opts []Option
	if o.Encoding != nil {
		opts = append(opts, WithEncoding(*o.Encoding))
	}
	if o.SheetName != nil {
		opts = append(opts, WithSheetName(*o.SheetName))
	}
	if o.Font != nil {
		opts = append(opts, WithFont(*o.Font))
	}
	if o.BlanksForNone != nil {
		opts = append(opts, WithBlanksForNone(*o.BlanksForNone))
	}
	if o.AutoAdjustWidth != nil {
		opts = append(opts, WithAutoAdjustWidth(*o.AutoAdjustWidth))
	}
	if o.MinCellWidth != nil {
		opts = append(opts, WithMinCellWidth(*o.MinCellWidth))
	}
	if o.MaxColumnWidth != nil {
		opts = append(opts, WithMaxColumnWidth(*o.MaxColumnWidth))
	}
	if o.Horz != nil {
		horz, err := ParseHorizontal(*o.Horz)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithHorizontal(horz))
	}
	if o.Vert != nil {
		vert, err := ParseVertical(*o.Vert)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithVertical(vert))
	}
	if o.TimeZone != nil {
		loc, err := time.LoadLocation(*o.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("load time zone %q: %w", *o.TimeZone, err)
		}
		opts = append(opts, WithLocation(loc))
	}
	return opts, nil
}
