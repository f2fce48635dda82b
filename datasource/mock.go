package datasource

import (
	"context"
	"errors"
	"sync"

	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/stats"
)

// errNotBound is returned by table operations invoked before Connect.
var errNotBound = errors.New("table is not bound to a live connection")

// MockDatasource is an in-memory Datasource used in tests across packages.
// It honours the same binding rules as the real backends: table operations
// fail until Connect has run.
type MockDatasource struct {
	mu        sync.Mutex
	connected bool
	ConnStrs  []string // every connection string passed to Connect, in order
	table     *MockTable
}

func NewMock() *MockDatasource {
	return &MockDatasource{table: &MockTable{}}
}

func (m *MockDatasource) Name() string { return "mock" }

func (m *MockDatasource) Connect(_ context.Context, connStr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	m.ConnStrs = append(m.ConnStrs, connStr)
	m.table.bind()
	return nil
}

func (m *MockDatasource) Disconnect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.table.unbind()
	return nil
}

func (m *MockDatasource) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockDatasource) EnsureCreated(ctx context.Context) error {
	if !m.table.Created() {
		return m.table.Create(ctx)
	}
	return nil
}

func (m *MockDatasource) Tables() Tables { return Tables{JobRecords: m.table} }

// MockTable is the in-memory Table behind MockDatasource. PostErr, when set,
// is returned by every PostRow call to exercise persistence failure paths.
type MockTable struct {
	mu      sync.Mutex
	bound   bool
	created bool
	rows    []record.JobRecord

	PostErr error
}

func (t *MockTable) bind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bound = true
}

func (t *MockTable) unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bound = false
}

func (t *MockTable) Create(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.bound {
		return errNotBound
	}
	t.created = true
	return nil
}

func (t *MockTable) Created() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.created
}

func (t *MockTable) PostRow(_ context.Context, row record.JobRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.PostErr != nil {
		return t.PostErr
	}
	if !t.bound {
		return errNotBound
	}
	for _, r := range t.rows {
		if r.URL == row.URL {
			return nil
		}
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *MockTable) GetRows(_ context.Context, filter Filter) ([]record.JobRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.bound {
		return nil, errNotBound
	}
	var out []record.JobRecord
	for _, r := range t.rows {
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *MockTable) GetMetrics(rows []record.JobRecord) stats.Metrics {
	return stats.Compute(rows)
}
