package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/locvowork/sheetexport/internal/logger"
	"github.com/locvowork/sheetexport/internal/source"
	"github.com/locvowork/sheetexport/pkg/sheetexport"
)

// ErrInvalidRequest marks errors caused by the caller's input.
var ErrInvalidRequest = errors.New("invalid export request")

// SheetRequest describes one sheet of an export. A sheet is built either
// from Rows, or from records (Data or Source) flattened with Mapping, or
// with a flat mapping over Columns when Mapping is omitted.
type SheetRequest struct {
	Name    string                    `json:"name" yaml:"name"`
	Layout  string                    `json:"layout,omitempty" yaml:"layout,omitempty"`
	Rows    [][]interface{}           `json:"rows,omitempty" yaml:"rows,omitempty"`
	Data    interface{}               `json:"data,omitempty" yaml:"data,omitempty"`
	Source  *source.Definition        `json:"source,omitempty" yaml:"source,omitempty"`
	Mapping *sheetexport.FieldMapping `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Columns []string                  `json:"columns,omitempty" yaml:"columns,omitempty"`
	Headers []interface{}             `json:"headers,omitempty" yaml:"headers,omitempty"`
}

func (r SheetRequest) hasRecords() bool {
	return r.Data != nil || r.Source != nil
}

func (r SheetRequest) mapping() (*sheetexport.FieldMapping, error) {
	if r.Mapping != nil {
		return r.Mapping, nil
	}
	if len(r.Columns) > 0 {
		return &sheetexport.FieldMapping{FieldKey: sheetexport.FieldKeys(r.Columns)}, nil
	}
	return nil, fmt.Errorf("%w: sheet %q needs mapping or columns for record data", sheetexport.ErrInvalidMapping, r.Name)
}

// ExportRequest is a complete export: sheets in output order plus
// per-request setting overrides.
type ExportRequest struct {
	Format    string                `json:"format,omitempty" yaml:"format,omitempty"`
	Overrides sheetexport.Overrides `json:"overrides" yaml:"overrides"`
	Sheets    []SheetRequest        `json:"sheets" yaml:"sheets"`
}

// Result is an exported file held in memory.
type Result struct {
	Format sheetexport.Format
	Data   []byte
}

// ExportService turns export requests into files. It is safe for
// concurrent use; each call builds its own exporter.
type ExportService struct {
	defaults []sheetexport.Option
	clients  source.Clients
}

func NewExportService(defaults []sheetexport.Option, clients source.Clients) *ExportService {
	return &ExportService{defaults: defaults, clients: clients}
}

// Exporter returns an exporter configured with the service defaults and
// the given overrides on top.
func (s *ExportService) Exporter(o sheetexport.Overrides) (*sheetexport.Exporter, error) {
	opts, err := o.Options()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	all := make([]sheetexport.Option, 0, len(s.defaults)+len(opts))
	all = append(all, s.defaults...)
	all = append(all, opts...)

	exp := sheetexport.New(all...)
	if _, err := sheetexport.ParseFont(exp.Config().Font); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return exp, nil
}

// BuildDocument resolves every sheet request, loading source data, into a
// document.
func (s *ExportService) BuildDocument(ctx context.Context, sheets []SheetRequest) (*sheetexport.Document, error) {
	if len(sheets) == 0 {
		return nil, sheetexport.ErrNoSheets
	}
	doc := sheetexport.NewDocument()
	for i, req := range sheets {
		if err := s.addSheet(ctx, doc, req); err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i, err)
		}
	}
	return doc, nil
}

func (s *ExportService) addSheet(ctx context.Context, doc *sheetexport.Document, req SheetRequest) error {
	layout, err := sheetexport.ParseLayoutMode(req.Layout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Rows != nil && req.hasRecords() {
		return fmt.Errorf("%w: sheet %q sets both rows and records", ErrInvalidRequest, req.Name)
	}

	headers, err := sheetexport.RowFromInterfaces(req.Headers)
	if err != nil {
		return fmt.Errorf("headers: %w", err)
	}

	var sheet *sheetexport.Sheet
	if req.hasRecords() {
		mapping, err := req.mapping()
		if err != nil {
			return err
		}
		records, err := s.records(ctx, req)
		if err != nil {
			return err
		}
		if sheet, err = doc.AddMappedSheet(req.Name, records, mapping, headers); err != nil {
			return err
		}
	} else {
		rows, err := sheetexport.RowsFromInterfaces(req.Rows)
		if err != nil {
			return err
		}
		if len(headers) > 0 {
			rows = append([]sheetexport.Row{headers}, rows...)
		}
		sheet = doc.AddSheet(req.Name, rows)
	}

	if req.Layout != "" {
		sheet.Layout = layout
	}
	return nil
}

func (s *ExportService) records(ctx context.Context, req SheetRequest) (interface{}, error) {
	if req.Source == nil {
		return req.Data, nil
	}
	src, err := source.Open(*req.Source, s.clients)
	if err != nil {
		if errors.Is(err, source.ErrUnknownSource) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, err
	}
	records, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s source: %w", req.Source.Type, err)
	}
	logger.DebugLog(ctx, "sheet %q: loaded %d records from %s source", req.Name, len(records), req.Source.Type)
	return records, nil
}

// Export builds the document for req and encodes it in the requested
// format (xlsx when empty).
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*Result, error) {
	format, err := sheetexport.ParseFormat(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	exp, err := s.Exporter(req.Overrides)
	if err != nil {
		return nil, err
	}
	doc, err := s.BuildDocument(ctx, req.Sheets)
	if err != nil {
		return nil, err
	}

	data, err := exp.ToBytes(ctx, doc, format)
	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "exported %d sheet(s) as %s (%d bytes)", doc.Len(), format, len(data))
	return &Result{Format: format, Data: data}, nil
}

// Preview lays out req without encoding a file and returns the regions
// that would be written.
func (s *ExportService) Preview(ctx context.Context, req ExportRequest) ([]sheetexport.RegionView, []sheetexport.SheetStats, error) {
	exp, err := s.Exporter(req.Overrides)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.BuildDocument(ctx, req.Sheets)
	if err != nil {
		return nil, nil, err
	}
	rec := sheetexport.NewRegionRecorder()
	stats, err := exp.Layout(ctx, doc, rec)
	if err != nil {
		return nil, nil, err
	}
	return rec.Views(), stats, nil
}

// IsClientError reports whether err was caused by invalid input rather than
// a failing backend.
func IsClientError(err error) bool {
	var encErr *sheetexport.EncodeError
	switch {
	case errors.As(err, &encErr),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, sheetexport.ErrMissingField),
		errors.Is(err, sheetexport.ErrInvalidMapping),
		errors.Is(err, sheetexport.ErrUnexpectedNested),
		errors.Is(err, sheetexport.ErrNestedTooDeep),
		errors.Is(err, sheetexport.ErrUnsupportedValue),
		errors.Is(err, sheetexport.ErrUnknownEncoding),
		errors.Is(err, sheetexport.ErrInvalidSheetName),
		errors.Is(err, sheetexport.ErrNoSheets):
		return true
	}
	return false
}
