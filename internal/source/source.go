package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/datastore"
	"github.com/jmoiron/sqlx"
	"github.com/locvowork/sheetexport/pkg/sheetexport"
	"github.com/olivere/elastic/v7"
)

// Source yields the dict-shaped records of one sheet.
type Source interface {
	Records(ctx context.Context) ([]sheetexport.Record, error)
}

// Type names a source kind in job files.
type Type string

const (
	TypeInline    Type = "inline"
	TypeJSON      Type = "json"
	TypeSQL       Type = "sql"
	TypeElastic   Type = "elastic"
	TypeDatastore Type = "datastore"
)

var (
	ErrUnknownSource = errors.New("unknown source type")
	ErrNoClient      = errors.New("source client not configured")
)

// Definition describes a source in a job file. Only the fields of the selected
// type are read.
type Definition struct {
	Type Type `yaml:"type" json:"type"`

	// inline
	Records []sheetexport.Record `yaml:"records,omitempty" json:"records,omitempty"`
	// json
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// sql
	Table   string                 `yaml:"table,omitempty" json:"table,omitempty"`
	Columns []string               `yaml:"columns,omitempty" json:"columns,omitempty"`
	Where   map[string]interface{} `yaml:"where,omitempty" json:"where,omitempty"`
	OrderBy []string               `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Query   string                 `yaml:"query,omitempty" json:"query,omitempty"`
	Args    []interface{}          `yaml:"args,omitempty" json:"args,omitempty"`
	// elastic
	Index       string `yaml:"index,omitempty" json:"index,omitempty"`
	QueryString string `yaml:"query_string,omitempty" json:"query_string,omitempty"`
	// datastore
	Kind    string                 `yaml:"kind,omitempty" json:"kind,omitempty"`
	Filters map[string]interface{} `yaml:"filters,omitempty" json:"filters,omitempty"`

	// Limit caps the number of records for sql, elastic and datastore.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Clients holds the backend connections sources may use. Nil clients make
// the corresponding source types unavailable.
type Clients struct {
	DB        *sqlx.DB
	Elastic   *elastic.Client
	Datastore *datastore.Client
}

// Open builds the source described by def.
func Open(def Definition, clients Clients) (Source, error) {
	switch Type(strings.ToLower(string(def.Type))) {
	case TypeInline, "":
		return Inline(def.Records), nil
	case TypeJSON:
		if def.Path == "" {
			return nil, fmt.Errorf("json source: path is required")
		}
		return &JSONFile{Path: def.Path}, nil
	case TypeSQL:
		if clients.DB == nil {
			return nil, fmt.Errorf("sql source: %w", ErrNoClient)
		}
		return &SQLSource{
			db:      clients.DB,
			Table:   def.Table,
			Columns: def.Columns,
			Where:   def.Where,
			OrderBy: def.OrderBy,
			Limit:   def.Limit,
			Query:   def.Query,
			Args:    def.Args,
		}, nil
	case TypeElastic:
		if clients.Elastic == nil {
			return nil, fmt.Errorf("elastic source: %w", ErrNoClient)
		}
		if def.Index == "" {
			return nil, fmt.Errorf("elastic source: index is required")
		}
		return &ElasticSource{client: clients.Elastic, Index: def.Index, QueryString: def.QueryString, Size: def.Limit}, nil
	case TypeDatastore:
		if clients.Datastore == nil {
			return nil, fmt.Errorf("datastore source: %w", ErrNoClient)
		}
		if def.Kind == "" {
			return nil, fmt.Errorf("datastore source: kind is required")
		}
		return &DatastoreSource{client: clients.Datastore, Kind: def.Kind, Filters: def.Filters, Limit: def.Limit}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownSource, def.Type)
}

// Inline serves records embedded in a job file or request.
type Inline []sheetexport.Record

func (s Inline) Records(context.Context) ([]sheetexport.Record, error) {
	return s, nil
}
