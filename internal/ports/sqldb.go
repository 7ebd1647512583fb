package ports

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
)

const serverRetryMaxElapsed = 15 * time.Second

// SQLDB implements DB over database/sql with the MySQL driver, retrying
// transient connection errors with exponential backoff (grounded on the
// teacher's internal/storage/dolt/store.go newServerRetryBackoff /
// isRetryableError / backoff.Retry pattern, since the LIMS/QC/ACORD/history
// databases this module reads from are plain MySQL rather than Dolt).
type SQLDB struct {
	db *sql.DB
}

// OpenSQLDB opens a MySQL connection pool for the given DSN.
func OpenSQLDB(dsn string) (*SQLDB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("ports: opening database: %w", err)
	}
	return &SQLDB{db: db}, nil
}

func newRetryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = serverRetryMaxElapsed
	return bo
}

// isRetryableError reports whether err is a transient connection error that
// should be retried, matching the teacher's dolt store heuristic.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "driver: bad connection"):
		return true
	case strings.Contains(errStr, "invalid connection"):
		return true
	case strings.Contains(errStr, "broken pipe"):
		return true
	case strings.Contains(errStr, "connection reset"):
		return true
	}
	return false
}

func withRetry(ctx context.Context, op func() error) error {
	bo := newRetryBackoff()
	return backoff.Retry(func() error {
		err := op()
		if err != nil && isRetryableError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

func (s *SQLDB) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	var rows []Row
	err := withRetry(ctx, func() error {
		sqlRows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer sqlRows.Close()
		rows, err = scanRows(sqlRows)
		return err
	})
	return rows, err
}

func (s *SQLDB) QueryRow(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return rows[0], nil
}

func (s *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := withRetry(ctx, func() error {
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

// Close releases the underlying connection pool.
func (s *SQLDB) Close() error { return s.db.Close() }

func scanRows(sqlRows *sql.Rows) ([]Row, error) {
	cols, err := sqlRows.Columns()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for sqlRows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		rows = append(rows, row)
	}
	return rows, sqlRows.Err()
}

var _ DB = (*SQLDB)(nil)
