package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
)

// SQLStore bridges containers and a DuckDB database: query results
// materialize as containers, containers load as tables, and DuckDB's
// native CSV/Parquet support backs fast bulk paths.
type SQLStore struct {
	db *sql.DB
}

// OpenDuckDB opens a DuckDB database. An empty path opens an in-memory
// database.
func OpenDuckDB(path string) (*SQLStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSQL, "open duckdb")
	}
	return &SQLStore{db: db}, nil
}

// DB exposes the underlying handle for ad-hoc statements.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close releases the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Query runs a statement and materializes the result set: result
// columns seed the header registry, rows become records. NULLs become
// empty fields. Rows not matching the filter are skipped.
func (s *SQLStore) Query(ctx context.Context, query string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeSQL, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSQL, "read result columns")
	}

	c := container.New(opts...)
	c.SetHeaders(cols)

	values := make([]sql.NullString, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.CodeSQL, "scan row")
		}
		record := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		if err := c.AddRow(record, fltr); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSQL, "iterate rows")
	}
	return c, nil
}

// CreateTable creates a VARCHAR table from the container's headers and
// loads every record in one transaction. An existing table with the
// same name is replaced.
func (s *SQLStore) CreateTable(ctx context.Context, c *container.Container, table string) error {
	names := c.HeaderNames()
	if len(names) == 0 {
		return errors.New(errors.CodeSQL, "container has no headers")
	}

	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = quoteIdent(n) + " VARCHAR"
	}
	ddl := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, errors.CodeSQL, "create table %s", table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeSQL, "begin transaction")
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.CodeSQL, "prepare insert")
	}

	for _, record := range c.Records() {
		args := make([]interface{}, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return errors.Wrap(err, errors.CodeSQL, "insert record")
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeSQL, "commit transaction")
	}
	return nil
}

// ImportCSV loads a CSV file into a table using DuckDB's schema
// inference.
func (s *SQLStore) ImportCSV(ctx context.Context, table, csvPath string) error {
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		quoteIdent(table), escapeLiteral(csvPath),
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, errors.CodeSQL, "import csv %s", csvPath)
	}
	return nil
}

// ExportParquet copies a table to a Parquet file.
func (s *SQLStore) ExportParquet(ctx context.Context, table, outPath, compression string) error {
	switch compression {
	case "snappy", "gzip", "zstd":
	default:
		compression = "uncompressed"
	}
	query := fmt.Sprintf(
		"COPY %s TO '%s' (FORMAT PARQUET, COMPRESSION '%s')",
		quoteIdent(table), escapeLiteral(outPath), compression,
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, errors.CodeSQL, "export parquet %s", outPath)
	}
	return nil
}

// Tables lists the tables of the attached database.
func (s *SQLStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT table_name FROM information_schema.tables ORDER BY table_name")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSQL, "list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.CodeSQL, "scan table name")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
