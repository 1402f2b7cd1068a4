// Package datarecording persists calibration profiles and verification
// runs in a SQLite database. Tables are derived from flat Go structs,
// inserts are batched, and pending rows are flushed when the process
// exits.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// SQLite backend for the recorder.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that records rows of same-typed entries
// into named tables.
type DataRecorder interface {
	// CreateTable creates the table named tableName with one column
	// per field of sampleEntry, if it does not exist yet.
	CreateTable(tableName string, sampleEntry any)

	// InsertData queues one entry for insertion into an existing table.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all queued entries to the database.
	Flush()
}

// NewRecorder creates a DataRecorder backed by the SQLite database at
// path + ".sqlite3". The database is created when missing and appended
// to when present, so repeated calibration runs accumulate in one
// file. An empty path picks a unique name.
func NewRecorder(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 1024,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter writes rows into a SQLite database.
type sqliteWriter struct {
	*sql.DB

	dbName    string
	tables    map[string]*table
	batchSize int
	pending   int
}

func (w *sqliteWriter) init() {
	if w.dbName == "" {
		w.dbName = "spindelay_runs_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func isAllowedFieldKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < t.NumField(); i++ {
		if !isAllowedFieldKind(t.Field(i).Type.Kind()) {
			return fmt.Errorf("field %s has an unsupported type",
				t.Field(i).Name)
		}
	}

	return nil
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	w.mustExecute(createTableSQL)

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)

	w.pending++
	if w.pending >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

func (w *sqliteWriter) Flush() {
	if w.pending == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for name, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := w.prepareInsert(name, t)
		for _, entry := range t.entries {
			v := reflect.ValueOf(entry)
			args := make([]any, v.NumField())
			for i := range args {
				args[i] = v.Field(i).Interface()
			}

			if _, err := stmt.Exec(args...); err != nil {
				panic(err)
			}
		}
		stmt.Close()

		t.entries = t.entries[:0]
	}

	w.pending = 0
}

func (w *sqliteWriter) prepareInsert(name string, t *table) *sql.Stmt {
	marks := strings.TrimSuffix(
		strings.Repeat("?, ", t.structType.NumField()), ", ")

	stmt, err := w.Prepare(
		`INSERT INTO ` + name + ` VALUES (` + marks + `);`)
	if err != nil {
		panic(err)
	}

	return stmt
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(fmt.Errorf("error executing %s: %w", query, err))
	}

	return res
}
