package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alwedo/jobscout/record"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func testDatasource(t testing.TB) (*Postgres, func()) {
	t.Helper()
	ctx := context.Background()

	var (
		dbImage          = "postgres:latest"
		dbName           = "jobscout"
		dbPort  nat.Port = "5432/tcp"
	)

	container, err := pgcontainer.Run(ctx,
		dbImage,
		pgcontainer.WithDatabase(dbName),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(dbPort)),
	)
	if err != nil {
		t.Fatalf("failed to start DB container: %s", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get container host: %s", err)
	}

	l := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	ds := New(l)
	if err := ds.Connect(ctx, connStr); err != nil {
		t.Fatalf("unable to connect: %v", err)
	}
	if err := ds.EnsureCreated(ctx); err != nil {
		t.Fatalf("unable to create tables: %v", err)
	}

	return ds, func() {
		_ = ds.Disconnect(ctx)
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	}
}

func TestPostgresTable(t *testing.T) {
	ds, closer := testDatasource(t)
	defer closer()

	ctx := context.Background()
	table := ds.Tables().JobRecords

	recs := []record.JobRecord{
		{URL: "https://example.com/1", Title: "Backend Developer", Salary: "$ 1.000,00", Technologies: []string{"Go"}},
		{URL: "https://example.com/2", Title: "Frontend Developer", Salary: "$ 2.000,00", Technologies: []string{"React"}},
	}

	t.Run("posts and reads back rows", func(t *testing.T) {
		for _, r := range recs {
			if err := table.PostRow(ctx, r); err != nil {
				t.Fatalf("PostRow returned an error: %v", err)
			}
		}

		rows, err := table.GetRows(ctx, nil)
		if err != nil {
			t.Fatalf("GetRows returned an error: %v", err)
		}
		if len(rows) != len(recs) {
			t.Errorf("expected %d rows, got %d", len(recs), len(rows))
		}
	})

	t.Run("posting the same URL twice keeps the original document", func(t *testing.T) {
		dup := recs[0]
		dup.Title = "Changed Title"
		if err := table.PostRow(ctx, dup); err != nil {
			t.Fatalf("duplicate PostRow returned an error: %v", err)
		}

		rows, err := table.GetRows(ctx, func(r record.JobRecord) bool { return r.URL == recs[0].URL })
		if err != nil {
			t.Fatalf("GetRows returned an error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row for the URL, got %d", len(rows))
		}
		if rows[0].Title != recs[0].Title {
			t.Errorf("expected original title %q, got %q", recs[0].Title, rows[0].Title)
		}
	})

	t.Run("filter narrows the result set", func(t *testing.T) {
		rows, err := table.GetRows(ctx, func(r record.JobRecord) bool { return r.Title == "Frontend Developer" })
		if err != nil {
			t.Fatalf("GetRows returned an error: %v", err)
		}
		if len(rows) != 1 || rows[0].URL != recs[1].URL {
			t.Errorf("filtered rows = %v, want only %s", rows, recs[1].URL)
		}
	})

	t.Run("disconnect unbinds the table", func(t *testing.T) {
		if err := ds.Disconnect(ctx); err != nil {
			t.Fatalf("Disconnect returned an error: %v", err)
		}
		if ds.Connected() {
			t.Error("expected Connected to be false after Disconnect")
		}
		if err := table.PostRow(ctx, recs[0]); err == nil {
			t.Error("expected PostRow on an unbound table to fail")
		}
	})
}
