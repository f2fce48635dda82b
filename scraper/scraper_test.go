package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper/browser"
	"github.com/alwedo/jobscout/scraper/platform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testDatasource(t *testing.T) *datasource.MockDatasource {
	t.Helper()
	ds := datasource.NewMock()
	if err := ds.Connect(context.Background(), "mock://localhost/records"); err != nil {
		t.Fatalf("unable to connect mock datasource: %v", err)
	}
	if err := ds.EnsureCreated(context.Background()); err != nil {
		t.Fatalf("unable to create mock tables: %v", err)
	}
	return ds
}

func newTestScraper(t *testing.T, ds datasource.Datasource, p platform.Platform) (*JobScraper, *browser.MockSession) {
	t.Helper()
	session := &browser.MockSession{Page: &browser.MockPage{}}
	s := New(testLogger(), &browser.MockLauncher{Session: session}, Params{Role: "developer", Pages: 1})
	s.RegisterPlatform(p)
	s.SetDatasource(ds)
	return s, session
}

func TestInitPersistsEveryExtractedListing(t *testing.T) {
	ds := testDatasource(t)
	p := &platform.MockPlatform{
		PlatformName: "stub",
		Links:        []string{"https://example.com/1", "https://example.com/2"},
		Records: map[string]record.JobRecord{
			"https://example.com/1": {URL: "https://example.com/1", Title: "Job One"},
			"https://example.com/2": {URL: "https://example.com/2", Title: "Job Two"},
		},
	}
	s, session := newTestScraper(t, ds, p)

	var callbackRuns int
	s.RegisterExecutionCallback(func() {
		if !session.Closed() {
			t.Error("execution callback ran before the browser session was closed")
		}
		callbackRuns++
	})

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init returned an error: %v", err)
	}

	rows, err := ds.Tables().JobRecords.GetRows(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetRows returned an error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 persisted records, got %d", len(rows))
	}
	if got := s.Records()["stub"]; len(got) != 2 {
		t.Errorf("expected 2 in-memory records, got %d", len(got))
	}
	if callbackRuns != 1 {
		t.Errorf("expected exactly one callback invocation, got %d", callbackRuns)
	}
}

func TestInitSkipsFailedListings(t *testing.T) {
	ds := testDatasource(t)
	p := &platform.MockPlatform{
		PlatformName: "stub",
		Links:        []string{"https://example.com/ok", "https://example.com/broken"},
		Records: map[string]record.JobRecord{
			"https://example.com/ok": {URL: "https://example.com/ok"},
		},
		InfoErr: map[string]error{
			"https://example.com/broken": errors.New("element not found"),
		},
	}
	s, _ := newTestScraper(t, ds, p)

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init returned an error: %v", err)
	}

	rows, err := ds.Tables().JobRecords.GetRows(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetRows returned an error: %v", err)
	}
	if len(rows) != 1 || rows[0].URL != "https://example.com/ok" {
		t.Errorf("expected only the healthy listing to be persisted, got %v", rows)
	}
}

func TestInitFailsOnLinkDiscovery(t *testing.T) {
	ds := testDatasource(t)
	p := &platform.MockPlatform{PlatformName: "stub", LinksErr: errors.New("pagination broke")}
	s, session := newTestScraper(t, ds, p)

	var callbackRan bool
	s.RegisterExecutionCallback(func() { callbackRan = true })

	err := s.Init(context.Background())
	if !errors.Is(err, ErrLinkDiscovery) {
		t.Fatalf("Init error = %v, want ErrLinkDiscovery", err)
	}
	if !session.Closed() {
		t.Error("expected the browser session to be closed after a fatal error")
	}
	if !callbackRan {
		t.Error("expected the execution callback to run after a fatal error")
	}
}

func TestInitFailsOnPersistence(t *testing.T) {
	ds := testDatasource(t)
	ds.Tables().JobRecords.(*datasource.MockTable).PostErr = errors.New("connection reset")

	p := &platform.MockPlatform{
		PlatformName: "stub",
		Links:        []string{"https://example.com/1"},
		Records:      map[string]record.JobRecord{"https://example.com/1": {URL: "https://example.com/1"}},
	}
	s, session := newTestScraper(t, ds, p)

	err := s.Init(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Init error = %v, want ErrPersistence", err)
	}
	if !session.Closed() {
		t.Error("expected the browser session to be closed after a persistence failure")
	}
}

func TestInitFailsWhenBrowserUnavailable(t *testing.T) {
	ds := testDatasource(t)
	s := New(testLogger(), &browser.MockLauncher{Err: errors.New("chromium missing")}, Params{Role: "developer"})
	s.SetDatasource(ds)

	if err := s.Init(context.Background()); !errors.Is(err, ErrBrowser) {
		t.Fatalf("Init error = %v, want ErrBrowser", err)
	}
}

func TestInitSkipsPersistenceWhenTableNotCreated(t *testing.T) {
	ds := datasource.NewMock()
	if err := ds.Connect(context.Background(), "mock://localhost/records"); err != nil {
		t.Fatalf("unable to connect mock datasource: %v", err)
	}
	// EnsureCreated deliberately not called: the table does not exist.

	p := &platform.MockPlatform{
		PlatformName: "stub",
		Links:        []string{"https://example.com/1"},
		Records:      map[string]record.JobRecord{"https://example.com/1": {URL: "https://example.com/1"}},
	}
	s, _ := newTestScraper(t, ds, p)

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init returned an error: %v", err)
	}
	if got := s.Records()["stub"]; len(got) != 1 {
		t.Errorf("expected the record to be collected in memory, got %d", len(got))
	}
}
