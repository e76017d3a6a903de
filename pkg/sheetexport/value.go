package sheetexport

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindDateTime
	KindDate
	KindTime
	KindNested
)

var kindNames = [...]string{
	KindNull:     "null",
	KindText:     "text",
	KindInt:      "int",
	KindFloat:    "float",
	KindBool:     "bool",
	KindDateTime: "datetime",
	KindDate:     "date",
	KindTime:     "time",
	KindNested:   "nested",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single cell entry. It is either a scalar or, for KindNested,
// an ordered list of sub-rows laid out inside the same sheet.
type Value struct {
	kind  Kind
	text  string
	i     int64
	f     float64
	b     bool
	t     time.Time
	aware bool
	rows  []Row
}

// Row is an ordered sequence of column entries.
type Row []Value

func Null() Value { return Value{kind: KindNull} }
func Text(s string) Value { return Value{kind: KindText, text: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }
func TimeOfDay(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Nested returns a NestedRows value. An empty list is stored as nil.
func Nested(rows ...Row) Value {
	if len(rows) == 0 {
		rows = nil
	}
	return Value{kind: KindNested, rows: rows}
}

// DateTime returns a timezone-aware datetime. The formatter converts it to
// the configured location before it is written.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t, aware: true} }

// NaiveDateTime returns a datetime whose wall clock is written as-is.
func NaiveDateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

// List returns a NestedRows value where every scalar becomes a one-cell row,
// i.e. a vertical group.
func List(values ...Value) Value {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{v}
	}
	return Nested(rows...)
}

// R builds a Row from Go values, panicking on unsupported input. Meant for
// literals in tests and examples.
func R(values ...interface{}) Row {
	row, err := RowFromInterfaces(values)
	if err != nil {
		panic(err)
	}
	return row
}

// fromUint64 keeps values past the int64 range as floats rather than
// wrapping them negative.
func fromUint64(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsNested() bool { return v.kind == KindNested }
func (v Value) Rows() []Row { return v.rows }
func (v Value) Time() time.Time { return v.t }
func (v Value) IsAware() bool { return v.aware }

// Interface returns the Go representation used when handing the value to a
// workbook writer. Nested values return nil.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindDateTime, KindDate, KindTime:
		return v.t
	}
	return nil
}

// String is the textual rendering used for CSV fields and width estimation.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDateTime:
		return v.t.Format("2006-01-02 15:04:05")
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return v.t.Format("15:04:05")
	case KindNested:
		return fmt.Sprintf("<%d rows>", len(v.rows))
	}
	return ""
}

// FromInterface converts a Go value into a Value. Slices become NestedRows
// (slice elements that are themselves slices are rows, anything else is a
// one-cell row); maps and structs are rejected since a cell cannot hold a
// record, use a FieldMapping for those.
func FromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case Row:
		return Nested(t), nil
	case []Row:
		return Nested(t...), nil
	case string:
		return Text(t), nil
	case []byte:
		return Text(string(t)), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		return fromUint64(uint64(t)), nil
	case uint64:
		return fromUint64(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, t.String())
		}
		return Float(f), nil
	case time.Time:
		return DateTime(t), nil
	case *time.Time:
		if t == nil {
			return Null(), nil
		}
		return DateTime(*t), nil
	case fmt.Stringer:
		return Text(t.String()), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromInterface(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		rows := make([]Row, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			row, err := rowFromElement(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		return Nested(rows...), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
}

func rowFromElement(x interface{}) (Row, error) {
	switch t := x.(type) {
	case Row:
		return t, nil
	case []interface{}:
		return RowFromInterfaces(t)
	case string, []byte:
		v, err := FromInterface(t)
		return Row{v}, err
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return RowFromInterfaces(items)
	}
	v, err := FromInterface(x)
	if err != nil {
		return nil, err
	}
	return Row{v}, nil
}

// RowFromInterfaces converts one row of Go values.
func RowFromInterfaces(items []interface{}) (Row, error) {
	row := make(Row, len(items))
	for i, item := range items {
		v, err := FromInterface(item)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = v
	}
	return row, nil
}

// RowsFromInterfaces converts a table of Go values.
func RowsFromInterfaces(table [][]interface{}) ([]Row, error) {
	rows := make([]Row, len(table))
	for i, items := range table {
		row, err := RowFromInterfaces(items)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}
