package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/sheetexport/internal/querybuilder"
	"github.com/locvowork/sheetexport/pkg/sheetexport"
)

// SQLSource runs a SELECT and returns each row as a column-name keyed record.
// Query, when set, is used verbatim with "?" placeholders; otherwise the
// statement is built from Table, Columns, Where, OrderBy and Limit.
type SQLSource struct {
	db *sqlx.DB

	Table   string
	Columns []string
	Where   map[string]interface{}
	OrderBy []string
	Limit   int

	Query string
	Args  []interface{}
}

func NewSQLSource(db *sqlx.DB, table string, columns ...string) *SQLSource {
	return &SQLSource{db: db, Table: table, Columns: columns}
}

func (s *SQLSource) statement() (string, []interface{}, error) {
	if s.Query != "" {
		return s.db.Rebind(s.Query), s.Args, nil
	}
	return querybuilder.NewSelectBuilder().
		WithBindType(sqlx.BindType(s.db.DriverName())).
		Select(s.Columns...).
		From(s.Table).
		WhereEq(s.Where).
		OrderBy(s.OrderBy...).
		Limit(s.Limit).
		Build()
}

func (s *SQLSource) Records(ctx context.Context) ([]sheetexport.Record, error) {
	query, args, err := s.statement()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var records []sheetexport.Record
	for rows.Next() {
		rec := make(map[string]interface{})
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, normalizeSQLRecord(rec))
	}
	return records, rows.Err()
}

// normalizeSQLRecord turns driver byte slices (text, numeric, json columns
// under lib/pq) into strings.
func normalizeSQLRecord(rec map[string]interface{}) sheetexport.Record {
	for k, v := range rec {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
		}
	}
	return rec
}
