// Package postgres implements the datasource contract on PostgreSQL,
// storing each job record as a JSONB document keyed by its URL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/stats"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS job_records (
	url text PRIMARY KEY,
	doc jsonb NOT NULL
)`
	insertRow = `INSERT INTO job_records (url, doc) VALUES ($1, $2)`
	selectAll = `SELECT doc FROM job_records`
)

// Backend returns the registry entry for postgres:// and postgresql://
// connection strings.
func Backend() datasource.Backend {
	return datasource.Backend{
		Match: func(connStr string) bool {
			return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
		},
		New: func(logger *slog.Logger) datasource.Datasource { return New(logger) },
	}
}

type Postgres struct {
	mu     sync.Mutex
	logger *slog.Logger
	pool   *pgxpool.Pool
	table  *recordTable
}

func New(logger *slog.Logger) *Postgres {
	return &Postgres{logger: logger, table: &recordTable{logger: logger}}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Connect(ctx context.Context, connStr string) error {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("unable to initialize db connection in Postgres.Connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("unable to ping database in Postgres.Connect: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pool = pool
	p.table.bind(pool)
	return nil
}

func (p *Postgres) Disconnect(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	p.table.unbind()
	return nil
}

func (p *Postgres) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool != nil
}

func (p *Postgres) EnsureCreated(ctx context.Context) error {
	if p.table.Created() {
		return nil
	}
	return p.table.Create(ctx)
}

func (p *Postgres) Tables() datasource.Tables {
	return datasource.Tables{JobRecords: p.table}
}

// recordTable is the job_records collection bound to the pool of its owning
// Postgres datasource.
type recordTable struct {
	mu      sync.Mutex
	logger  *slog.Logger
	pool    *pgxpool.Pool
	created bool
}

func (t *recordTable) bind(pool *pgxpool.Pool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pool = pool
}

func (t *recordTable) unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pool = nil
}

func (t *recordTable) conn() (*pgxpool.Pool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pool == nil {
		return nil, errors.New("job_records table is not bound to a live connection")
	}
	return t.pool, nil
}

func (t *recordTable) Create(ctx context.Context) error {
	pool, err := t.conn()
	if err != nil {
		return fmt.Errorf("unable to create table in recordTable.Create: %w", err)
	}
	if t.Created() {
		return nil
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("unable to create table in recordTable.Create: %w", err)
	}

	t.mu.Lock()
	t.created = true
	t.mu.Unlock()
	return nil
}

func (t *recordTable) Created() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.created
}

func (t *recordTable) PostRow(ctx context.Context, row record.JobRecord) error {
	pool, err := t.conn()
	if err != nil {
		return fmt.Errorf("unable to post row in recordTable.PostRow: %w", err)
	}

	doc, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("unable to marshal record in recordTable.PostRow: %w", err)
	}

	if _, err := pool.Exec(ctx, insertRow, row.URL, doc); err != nil {
		// A unique violation means the listing was already persisted by an
		// earlier run. The original document wins.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			t.logger.Debug("record already persisted", slog.String("url", row.URL))
			return nil
		}
		return fmt.Errorf("unable to insert record in recordTable.PostRow: %w", err)
	}
	return nil
}

func (t *recordTable) GetRows(ctx context.Context, filter datasource.Filter) ([]record.JobRecord, error) {
	pool, err := t.conn()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows in recordTable.GetRows: %w", err)
	}

	rows, err := pool.Query(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("unable to query records in recordTable.GetRows: %w", err)
	}
	defer rows.Close()

	var out []record.JobRecord
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("unable to scan record in recordTable.GetRows: %w", err)
		}
		var r record.JobRecord
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("unable to unmarshal record in recordTable.GetRows: %w", err)
		}
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed in recordTable.GetRows: %w", err)
	}
	return out, nil
}

func (t *recordTable) GetMetrics(rows []record.JobRecord) stats.Metrics {
	return stats.Compute(rows)
}
