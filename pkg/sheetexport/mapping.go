package sheetexport

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one dict-shaped input item.
type Record = map[string]interface{}

// FieldKeys is one key or a list of keys. In YAML and JSON it may be written
// as a plain string or as a list of strings.
type FieldKeys []string

func (k *FieldKeys) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*k = FieldKeys{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*k = FieldKeys(list)
		return nil
	}
	return fmt.Errorf("field_key must be a string or a list of strings (line %d)", node.Line)
}

func (k FieldKeys) MarshalYAML() (interface{}, error) {
	if len(k) == 1 {
		return k[0], nil
	}
	return []string(k), nil
}

func (k *FieldKeys) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = FieldKeys{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("field_key must be a string or a list of strings: %w", err)
	}
	*k = FieldKeys(list)
	return nil
}

func (k FieldKeys) MarshalJSON() ([]byte, error) {
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

// FieldMapping describes how one record becomes a row: the FieldKey values
// lead the row and, when Next is set, the records under DataKey are
// flattened with Next into a trailing nested cell.
type FieldMapping struct {
	FieldKey FieldKeys     `json:"field_key" yaml:"field_key"`
	DataKey  string        `json:"data_key,omitempty" yaml:"data_key,omitempty"`
	Next     *FieldMapping `json:"next,omitempty" yaml:"next,omitempty"`
}

// ParseFieldMapping decodes a mapping tree from YAML (JSON is valid YAML).
func ParseFieldMapping(data []byte) (*FieldMapping, error) {
	var m FieldMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode field mapping: %w", err)
	}
	return &m, nil
}

// Depth returns the number of mapping levels, 1 for a mapping without Next.
func (m *FieldMapping) Depth() int {
	depth := 0
	for n := m; n != nil; n = n.Next {
		depth++
	}
	return depth
}

// Flatten turns records into the nested row shape consumed by the recursive
// layout. records may be a single record, a slice of records, a struct or a
// slice of structs; anything else is rejected.
func Flatten(records interface{}, mapping *FieldMapping) ([]Row, error) {
	if mapping == nil || len(mapping.FieldKey) == 0 {
		return nil, ErrInvalidMapping
	}

	list, err := normalizeRecords(records)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(list))
	for i, rec := range list {
		row, err := flattenRecord(rec, mapping)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func flattenRecord(rec Record, mapping *FieldMapping) (Row, error) {
	row := make(Row, 0, len(mapping.FieldKey)+1)
	for _, key := range mapping.FieldKey {
		raw, ok := rec[key]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingField, key)
		}
		v, err := FromInterface(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		row = append(row, v)
	}

	if mapping.Next == nil {
		return row, nil
	}
	if mapping.DataKey == "" {
		return nil, fmt.Errorf("%w: data_key is required when next is set", ErrInvalidMapping)
	}
	children, ok := rec[mapping.DataKey]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingField, mapping.DataKey)
	}
	sub, err := Flatten(children, mapping.Next)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mapping.DataKey, err)
	}
	return append(row, Nested(sub...)), nil
}

// normalizeRecords coerces the accepted input shapes into a list of records.
func normalizeRecords(records interface{}) ([]Record, error) {
	switch t := records.(type) {
	case nil:
		return nil, nil
	case Record:
		return []Record{t}, nil
	case []Record:
		return t, nil
	}

	rv := reflect.ValueOf(records)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		rec, err := toRecord(rv)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	case reflect.Slice, reflect.Array:
		out := make([]Record, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			rec, err := toRecord(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			out = append(out, rec)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: records of type %T", ErrUnsupportedValue, records)
}

func toRecord(v reflect.Value) (Record, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil record", ErrUnsupportedValue)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnsupportedValue, v.Type().Key())
		}
		rec := make(Record, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			rec[iter.Key().String()] = iter.Value().Interface()
		}
		return rec, nil
	case reflect.Struct:
		return structToRecord(v), nil
	}
	return nil, fmt.Errorf("%w: record of kind %s", ErrUnsupportedValue, v.Kind())
}

// structToRecord keys exported fields by their json tag name, falling back to
// the Go field name. Map fields are spread into "Field_key" entries.
func structToRecord(v reflect.Value) Record {
	typ := v.Type()
	rec := make(Record, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Map && fv.Type().Key().Kind() == reflect.String {
			if fv.IsNil() {
				continue
			}
			iter := fv.MapRange()
			for iter.Next() {
				rec[fmt.Sprintf("%s_%s", name, iter.Key().String())] = iter.Value().Interface()
			}
			continue
		}
		rec[name] = fv.Interface()
	}
	return rec
}
