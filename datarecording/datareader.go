package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// QueryParams encapsulates the optional parts of a table query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword.
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of records to return. 0 means no
	// limit.
	Limit int

	// Offset is the number of records to skip.
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords.
	OrderBy string
}

// DataReader reads recorded rows back out of a database written by a
// DataRecorder.
type DataReader interface {
	// MapTable establishes the mapping between a table and the struct
	// type its rows are scanned into. Required before querying.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the names of all mapped tables.
	ListTables() []string

	// Query returns the rows of a mapped table that match params, and
	// the total number of matching rows ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the underlying database.
	Close() error
}

// NewReader creates a DataReader for the SQLite database at
// path + ".sqlite3".
func NewReader(path string) DataReader {
	db, err := sql.Open("sqlite3", path+".sqlite3")
	if err != nil {
		panic(err)
	}

	return &sqliteReader{
		db:     db,
		tables: make(map[string]reflect.Type),
	}
}

type sqliteReader struct {
	db     *sql.DB
	tables map[string]reflect.Type
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	r.tables[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, exists := r.tables[tableName]
	if !exists {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	totalCount, err := r.countRows(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		r.buildSelect(tableName, structType, params), params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		entry := reflect.New(structType).Elem()

		fields := make([]any, structType.NumField())
		for i := range fields {
			fields[i] = entry.Field(i).Addr().Interface()
		}

		if err := rows.Scan(fields...); err != nil {
			return nil, 0, err
		}

		results = append(results, entry.Interface())
	}

	return results, totalCount, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

func (r *sqliteReader) countRows(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	query := `SELECT COUNT(*) FROM ` + tableName
	if params.Where != "" {
		query += ` WHERE ` + params.Where
	}

	count := 0
	err := r.db.QueryRowContext(ctx, query, params.Args...).Scan(&count)

	return count, err
}

func (r *sqliteReader) buildSelect(
	tableName string,
	structType reflect.Type,
	params QueryParams,
) string {
	columns := make([]string, structType.NumField())
	for i := range columns {
		columns[i] = structType.Field(i).Name
	}

	query := `SELECT ` + strings.Join(columns, ", ") +
		` FROM ` + tableName

	if params.Where != "" {
		query += ` WHERE ` + params.Where
	}

	if params.OrderBy != "" {
		query += ` ORDER BY ` + params.OrderBy
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`,
			params.Limit, params.Offset)
	}

	return query
}
