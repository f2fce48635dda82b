// Package datasource decouples scrape orchestration from storage. A
// Datasource owns one backing connection and exposes typed table handles;
// concrete backends register themselves in a Registry and are selected by
// the shape of the connection string.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/stats"
)

// ErrUnsupported is returned when a connection string matches no registered
// backend.
var ErrUnsupported = errors.New("datasource not supported")

// Filter selects rows in Table.GetRows. A nil Filter keeps every row.
type Filter func(record.JobRecord) bool

// Table is one logical record collection.
//
// Create and PostRow fail if the table has not been bound to a live
// connection, ie. before the owning Datasource connected.
type Table interface {
	// Create creates the backing collection. Idempotent once created.
	Create(ctx context.Context) error

	// Created reports whether the backing collection exists.
	Created() bool

	// PostRow inserts one record. Inserting a record whose URL is already
	// stored is not an error; the original document wins.
	PostRow(ctx context.Context, row record.JobRecord) error

	// GetRows returns all stored records, optionally filtered.
	GetRows(ctx context.Context, filter Filter) ([]record.JobRecord, error)

	// GetMetrics summarizes the given rows.
	GetMetrics(rows []record.JobRecord) stats.Metrics
}

// Tables holds the typed table handles owned by a Datasource.
type Tables struct {
	JobRecords Table
}

// Datasource is the connection lifecycle plus its table handles. Connected
// is true iff the underlying connection handle is live.
type Datasource interface {
	Name() string
	Connect(ctx context.Context, connStr string) error
	Disconnect(ctx context.Context) error
	Connected() bool

	// EnsureCreated creates any table not yet marked created. Idempotent.
	EnsureCreated(ctx context.Context) error

	Tables() Tables
}

// connStrRe validates the generic connection string shape
// scheme://[user[:pass]@]host[:port][/db][?opts] before any backend is
// consulted.
var connStrRe = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://(?:(?:\w+)?(?::\w+)?@)?[\w.-]+(?::\d+)?(?:/[\w-]+)?(?:\?[\w-]+=[\w-]+(?:&[\w-]+=[\w-]+)*)?$`)

// Factory builds an unconnected Datasource.
type Factory func(logger *slog.Logger) Datasource

// Backend pairs a connection-string predicate with the factory for the
// backend that handles it.
type Backend struct {
	Match func(connStr string) bool
	New   Factory
}

// Registry selects a backend implementation for a connection string. It is
// constructed once at process start with every compiled-in backend.
type Registry struct {
	logger   *slog.Logger
	backends []Backend
}

func NewRegistry(logger *slog.Logger, backends ...Backend) *Registry {
	return &Registry{logger: logger, backends: backends}
}

// Open validates the connection string shape and returns an unconnected
// Datasource for the first backend claiming it, or ErrUnsupported.
func (r *Registry) Open(connStr string) (Datasource, error) {
	if !connStrRe.MatchString(connStr) {
		return nil, fmt.Errorf("%w: malformed connection string %q", ErrUnsupported, connStr)
	}
	for _, b := range r.backends {
		if b.Match(connStr) {
			return b.New(r.logger), nil
		}
	}
	return nil, fmt.Errorf("%w: no backend for %q", ErrUnsupported, connStr)
}

// Switch tears down the old datasource and connects a new one for connStr.
// The old connection is fully disconnected before the new one is opened so
// the two never overlap on the backing store. The caller must re-propagate
// the returned Datasource into the Queue.
func (r *Registry) Switch(ctx context.Context, old Datasource, connStr string) (Datasource, error) {
	if old != nil && old.Connected() {
		if err := old.Disconnect(ctx); err != nil {
			return nil, fmt.Errorf("unable to disconnect %s in Registry.Switch: %w", old.Name(), err)
		}
	}

	ds, err := r.Open(connStr)
	if err != nil {
		return nil, err
	}
	if err := ds.Connect(ctx, connStr); err != nil {
		return nil, fmt.Errorf("unable to connect %s in Registry.Switch: %w", ds.Name(), err)
	}
	if err := ds.EnsureCreated(ctx); err != nil {
		return nil, fmt.Errorf("unable to ensure tables for %s in Registry.Switch: %w", ds.Name(), err)
	}
	return ds, nil
}
