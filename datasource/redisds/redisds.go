// Package redisds implements the datasource contract on Redis. Each job
// record is one JSON value keyed by its URL, with a set index for listing.
package redisds

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
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "jobscout:job_records:"
	indexKey  = "jobscout:job_records"
)

// Backend returns the registry entry for redis:// and rediss:// connection
// strings.
func Backend() datasource.Backend {
	return datasource.Backend{
		Match: func(connStr string) bool {
			return strings.HasPrefix(connStr, "redis://") || strings.HasPrefix(connStr, "rediss://")
		},
		New: func(logger *slog.Logger) datasource.Datasource { return New(logger) },
	}
}

type Redis struct {
	mu     sync.Mutex
	logger *slog.Logger
	client *redis.Client
	table  *recordTable
}

func New(logger *slog.Logger) *Redis {
	return &Redis{logger: logger, table: &recordTable{logger: logger}}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Connect(ctx context.Context, connStr string) error {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return fmt.Errorf("unable to parse connection string in Redis.Connect: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("unable to ping redis in Redis.Connect: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.client = client
	r.table.bind(client)
	return nil
}

func (r *Redis) Disconnect(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		if err := r.client.Close(); err != nil {
			return fmt.Errorf("unable to close client in Redis.Disconnect: %w", err)
		}
		r.client = nil
	}
	r.table.unbind()
	return nil
}

func (r *Redis) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client != nil
}

func (r *Redis) EnsureCreated(ctx context.Context) error {
	if r.table.Created() {
		return nil
	}
	return r.table.Create(ctx)
}

func (r *Redis) Tables() datasource.Tables {
	return datasource.Tables{JobRecords: r.table}
}

type recordTable struct {
	mu      sync.Mutex
	logger  *slog.Logger
	client  *redis.Client
	created bool
}

func (t *recordTable) bind(client *redis.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = client
}

func (t *recordTable) unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = nil
}

func (t *recordTable) conn() (*redis.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil, errors.New("job_records table is not bound to a live connection")
	}
	return t.client, nil
}

// Create is a marker only: redis keyspaces exist implicitly.
func (t *recordTable) Create(context.Context) error {
	if _, err := t.conn(); err != nil {
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
	client, err := t.conn()
	if err != nil {
		return fmt.Errorf("unable to post row in recordTable.PostRow: %w", err)
	}

	doc, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("unable to marshal record in recordTable.PostRow: %w", err)
	}

	// SETNX keeps the first stored document for a URL.
	stored, err := client.SetNX(ctx, keyPrefix+row.URL, doc, 0).Result()
	if err != nil {
		return fmt.Errorf("unable to store record in recordTable.PostRow: %w", err)
	}
	if !stored {
		t.logger.Debug("record already persisted", slog.String("url", row.URL))
		return nil
	}
	if err := client.SAdd(ctx, indexKey, row.URL).Err(); err != nil {
		return fmt.Errorf("unable to index record in recordTable.PostRow: %w", err)
	}
	return nil
}

func (t *recordTable) GetRows(ctx context.Context, filter datasource.Filter) ([]record.JobRecord, error) {
	client, err := t.conn()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows in recordTable.GetRows: %w", err)
	}

	urls, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to list records in recordTable.GetRows: %w", err)
	}

	var out []record.JobRecord
	for _, url := range urls {
		doc, err := client.Get(ctx, keyPrefix+url).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("unable to fetch record %s in recordTable.GetRows: %w", url, err)
		}
		var r record.JobRecord
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("unable to unmarshal record %s in recordTable.GetRows: %w", url, err)
		}
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *recordTable) GetMetrics(rows []record.JobRecord) stats.Metrics {
	return stats.Compute(rows)
}
