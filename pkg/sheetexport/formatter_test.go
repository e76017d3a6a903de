package sheetexport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCellFormatter_Classify(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	instant := time.Date(2024, 3, 5, 20, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		cfg       Config
		in        Value
		wantValue Value
		wantStyle StyleID
	}{
		{
			name:      "null becomes blank",
			cfg:       DefaultConfig(),
			in:        Null(),
			wantValue: Text(""),
			wantStyle: StyleDefault,
		},
		{
			name:      "null kept without blanks_for_none",
			cfg:       Config{BlanksForNone: false},
			in:        Null(),
			wantValue: Null(),
			wantStyle: StyleDefault,
		},
		{
			name:      "aware datetime made naive in location",
			cfg:       Config{Location: ict},
			in:        DateTime(instant),
			wantValue: NaiveDateTime(time.Date(2024, 3, 6, 3, 30, 0, 0, time.UTC)),
			wantStyle: StyleDateTime,
		},
		{
			name:      "naive datetime untouched",
			cfg:       Config{Location: ict},
			in:        NaiveDateTime(instant),
			wantValue: NaiveDateTime(instant),
			wantStyle: StyleDateTime,
		},
		{
			name:      "date",
			cfg:       DefaultConfig(),
			in:        Date(instant),
			wantValue: Date(instant),
			wantStyle: StyleDate,
		},
		{
			name:      "time of day",
			cfg:       DefaultConfig(),
			in:        TimeOfDay(instant),
			wantValue: TimeOfDay(instant),
			wantStyle: StyleTime,
		},
		{
			name:      "text with custom font",
			cfg:       Config{Font: "bold on"},
			in:        Text("x"),
			wantValue: Text("x"),
			wantStyle: StyleFont,
		},
		{
			name:      "date keeps date style with custom font",
			cfg:       Config{Font: "bold on"},
			in:        Date(instant),
			wantValue: Date(instant),
			wantStyle: StyleDate,
		},
		{
			name:      "number",
			cfg:       DefaultConfig(),
			in:        Float(1.5),
			wantValue: Float(1.5),
			wantStyle: StyleDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := NewCellFormatter(tt.cfg)
			got, style := cf.Classify(tt.in)
			assert.Equal(t, tt.wantValue, got)
			assert.Equal(t, tt.wantStyle, style)

			again, againStyle := cf.Classify(tt.in)
			assert.Equal(t, got, again)
			assert.Equal(t, style, againStyle)
		})
	}
}

func TestStyleID_NumberFormat(t *testing.T) {
	assert.Equal(t, "yyyy-mm-dd hh:mm:ss", StyleDateTime.NumberFormat())
	assert.Equal(t, "yyyy-mm-dd", StyleDate.NumberFormat())
	assert.Equal(t, "hh:mm:ss", StyleTime.NumberFormat())
	assert.Empty(t, StyleDefault.NumberFormat())
	assert.Empty(t, StyleFont.NumberFormat())
}
