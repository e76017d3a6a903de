package sheetexport

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a record lacks a key named by a FieldMapping.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidMapping is returned for a FieldMapping without field keys.
	ErrInvalidMapping = errors.New("invalid field mapping")
	// ErrUnexpectedNested is returned by the flat layout when a cell holds sub-rows.
	ErrUnexpectedNested = errors.New("nested rows are not allowed in a flat layout")
	// ErrNestedTooDeep is returned by the row-merge layout for lists of non-scalars.
	ErrNestedTooDeep = errors.New("row-merge layout accepts only lists of scalars")
	// ErrUnsupportedValue is returned when a Go value has no cell representation.
	ErrUnsupportedValue = errors.New("unsupported cell value")
	// ErrUnknownEncoding is returned for an encoding name that cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")
	// ErrInvalidSheetName is returned for a sheet name a workbook rejects.
	ErrInvalidSheetName = errors.New("invalid sheet name")
	// ErrNoSheets is returned when a document without sheets is exported.
	ErrNoSheets = errors.New("no sheets to export")
)

// EncodeError reports a CSV field that cannot be represented in the
// configured encoding.
type EncodeError struct {
	Sheet    string
	Row      int
	Col      int
	Encoding string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode sheet %q row %d col %d as %s: %v", e.Sheet, e.Row, e.Col, e.Encoding, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
