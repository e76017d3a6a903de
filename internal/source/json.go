package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/locvowork/sheetexport/pkg/sheetexport"
)

// JSONFile reads records from a file holding either one JSON object or an
// array of objects. Numbers are kept as json.Number so integers stay integers.
type JSONFile struct {
	Path string
}

func (s *JSONFile) Records(context.Context) ([]sheetexport.Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return records, nil
}

// DecodeRecords decodes a JSON object or array of objects.
func DecodeRecords(data []byte) ([]sheetexport.Record, error) {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if len(data) > 0 && data[0] == '{' {
		var rec sheetexport.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		return []sheetexport.Record{rec}, nil
	}

	var records []sheetexport.Record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
