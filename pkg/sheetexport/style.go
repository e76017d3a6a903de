package sheetexport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var fontColors = map[string]string{
	"black":  "000000",
	"white":  "FFFFFF",
	"red":    "FF0000",
	"green":  "00FF00",
	"blue":   "0000FF",
	"yellow": "FFFF00",
	"orange": "FF9900",
	"gray":   "808080",
	"grey":   "808080",
	"navy":   "000080",
	"brown":  "993300",
}

// ParseFont reads an xlwt-style font description such as
// "bold on, italic on, name Arial, height 240, color red". Height is in
// twips (1/20 point). An empty description yields a nil font.
func ParseFont(spec string) (*excelize.Font, error) {
	spec = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(spec), "font:"))
	if spec == "" {
		return nil, nil
	}

	font := &excelize.Font{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		key := strings.ToLower(fields[0])
		val := strings.Join(fields[1:], " ")

		switch key {
		case "bold":
			b, err := parseSwitch(val)
			if err != nil {
				return nil, fmt.Errorf("font bold: %w", err)
			}
			font.Bold = b
		case "italic":
			b, err := parseSwitch(val)
			if err != nil {
				return nil, fmt.Errorf("font italic: %w", err)
			}
			font.Italic = b
		case "struck_out", "strike":
			b, err := parseSwitch(val)
			if err != nil {
				return nil, fmt.Errorf("font struck_out: %w", err)
			}
			font.Strike = b
		case "underline":
			b, err := parseSwitch(val)
			if err != nil {
				return nil, fmt.Errorf("font underline: %w", err)
			}
			if b {
				font.Underline = "single"
			}
		case "name":
			if val == "" {
				return nil, fmt.Errorf("font name is empty")
			}
			font.Family = val
		case "height":
			twips, err := strconv.Atoi(val)
			if err != nil || twips <= 0 {
				return nil, fmt.Errorf("font height %q: must be a positive number of twips", val)
			}
			font.Size = float64(twips) / 20
		case "color", "colour", "color_index", "colour_index":
			color, err := parseColor(val)
			if err != nil {
				return nil, err
			}
			font.Color = color
		default:
			return nil, fmt.Errorf("unknown font attribute %q", key)
		}
	}
	return font, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1", "":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q", s)
}

func parseColor(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := fontColors[name]; ok {
		return hex, nil
	}
	hex := strings.TrimPrefix(name, "#")
	if len(hex) == 6 {
		if _, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return strings.ToUpper(hex), nil
		}
	}
	return "", fmt.Errorf("invalid font color %q", s)
}

// styleTable lazily registers one workbook style per StyleID. It belongs to
// a single workbook and is never shared between exports.
type styleTable struct {
	file *excelize.File
	font *excelize.Font
	horz string
	vert string
	ids  map[StyleID]int
}

func newStyleTable(f *excelize.File, cfg Config, font *excelize.Font) *styleTable {
	return &styleTable{
		file: f,
		font: font,
		horz: excelHorizontal(cfg.Horz),
		vert: excelVertical(cfg.Vert),
		ids:  make(map[StyleID]int),
	}
}

func (st *styleTable) id(style StyleID) (int, error) {
	if id, ok := st.ids[style]; ok {
		return id, nil
	}

	s := &excelize.Style{}
	if st.horz != "" || st.vert != "" {
		s.Alignment = &excelize.Alignment{Horizontal: st.horz, Vertical: st.vert}
	}
	if numFmt := style.NumberFormat(); numFmt != "" {
		s.CustomNumFmt = &numFmt
	}
	if style == StyleFont && st.font != nil {
		font := *st.font
		s.Font = &font
	}

	id, err := st.file.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("create %s style: %w", style, err)
	}
	st.ids[style] = id
	return id, nil
}

// excelHorizontal maps to the workbook's alignment names; general is the
// workbook default and is left unset.
func excelHorizontal(h HorizontalAlignment) string {
	switch h {
	case HorzLeft, HorzCenter, HorzRight, HorzFill, HorzJustify:
		return string(h)
	}
	return ""
}

func excelVertical(v VerticalAlignment) string {
	switch v {
	case VertTop, VertCenter, VertJustify:
		return string(v)
	}
	return ""
}
