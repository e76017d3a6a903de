package querybuilder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SelectBuilder constructs parameterised SELECT statements. Conditions use
// "?" placeholders, rebound for the target driver in Build.
type SelectBuilder struct {
	bindType int
	table    string
	columns  []string
	where    []string
	eqCols   []string
	args     []interface{}
	orderBy  []string
	limit    int
	offset   int
}

// NewSelectBuilder returns a builder producing PostgreSQL ($n) placeholders.
func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{bindType: sqlx.DOLLAR}
}

// WithBindType switches the placeholder style, e.g. sqlx.QUESTION.
func (b *SelectBuilder) WithBindType(bindType int) *SelectBuilder {
	b.bindType = bindType
	return b
}

// Select specifies the columns to retrieve; none means "*".
func (b *SelectBuilder) Select(cols ...string) *SelectBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Where adds a condition; conditions are joined with AND.
func (b *SelectBuilder) Where(condition string, args ...interface{}) *SelectBuilder {
	b.where = append(b.where, condition)
	b.args = append(b.args, args...)
	return b
}

// WhereEq adds "column = ?" for every entry, in sorted key order. The keys
// are checked as column names in Build.
func (b *SelectBuilder) WhereEq(filters map[string]interface{}) *SelectBuilder {
	for _, col := range sortedKeys(filters) {
		b.eqCols = append(b.eqCols, col)
		b.Where(col+" = ?", filters[col])
	}
	return b
}

func (b *SelectBuilder) OrderBy(order ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, order...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

// Build renders the statement and its arguments. Table and column names
// must be plain (optionally schema-qualified) identifiers; order clauses may
// add ASC or DESC.
func (b *SelectBuilder) Build() (string, []interface{}, error) {
	if !identifierPattern.MatchString(b.table) {
		return "", nil, fmt.Errorf("invalid table name %q", b.table)
	}
	cols := "*"
	if len(b.columns) > 0 {
		for _, c := range b.columns {
			if !identifierPattern.MatchString(c) {
				return "", nil, fmt.Errorf("invalid column name %q", c)
			}
		}
		cols = strings.Join(b.columns, ", ")
	}
	for _, c := range b.eqCols {
		if !identifierPattern.MatchString(c) {
			return "", nil, fmt.Errorf("invalid column name %q", c)
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}

	if len(b.orderBy) > 0 {
		for _, o := range b.orderBy {
			if err := validateOrder(o); err != nil {
				return "", nil, err
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	query := sqlx.Rebind(b.bindType, sb.String())
	if n := strings.Count(sb.String(), "?"); n != len(b.args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", n, len(b.args))
	}
	return query, b.args, nil
}

func validateOrder(o string) error {
	fields := strings.Fields(o)
	if len(fields) == 0 || len(fields) > 2 || !identifierPattern.MatchString(fields[0]) {
		return fmt.Errorf("invalid order clause %q", o)
	}
	if len(fields) == 2 {
		switch strings.ToUpper(fields[1]) {
		case "ASC", "DESC":
		default:
			return fmt.Errorf("invalid order direction in %q", o)
		}
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
