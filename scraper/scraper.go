// Package scraper runs one configured scrape job: it owns a browser
// session, walks every registered platform collecting listing links, then
// extracts and persists one record per link.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/metrics"
	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper/browser"
	"github.com/alwedo/jobscout/scraper/platform"
)

var (
	// ErrBrowser marks a fatal setup failure: the browser session could
	// not be acquired or a page could not be opened. Never retried.
	ErrBrowser = errors.New("scraper: browser not available")

	// ErrLinkDiscovery marks a link-collection failure for a platform.
	// Fatal to the job: without links the job cannot meaningfully proceed.
	ErrLinkDiscovery = errors.New("scraper: job links not found")

	// ErrPersistence marks a datastore write failure. Fatal to the job: a
	// silently dropped record is worse than a failed run.
	ErrPersistence = errors.New("scraper: unable to persist job record")
)

// Params configures one scrape job for its lifetime.
type Params struct {
	Role        string
	Tags        []string
	Pages       int
	SettleDelay time.Duration
}

// JobScraper is one configured scrape run. Construct with New, inject the
// datasource and platforms, then Init drives the whole job.
type JobScraper struct {
	logger    *slog.Logger
	launcher  browser.Launcher
	params    Params
	platforms []platform.Platform
	ds        datasource.Datasource
	callback  func()

	links   map[string][]string
	records map[string][]record.JobRecord
}

func New(logger *slog.Logger, launcher browser.Launcher, params Params) *JobScraper {
	return &JobScraper{
		logger:   logger,
		launcher: launcher,
		params:   params,
		links:    make(map[string][]string),
		records:  make(map[string][]record.JobRecord),
	}
}

func (s *JobScraper) Params() Params { return s.params }

// RegisterPlatform adds one extraction strategy to this job's active set.
// Platforms run in registration order.
func (s *JobScraper) RegisterPlatform(p platform.Platform) {
	s.platforms = append(s.platforms, p)
}

// RegisterExecutionCallback sets the hook invoked once, after the browser
// session has been closed, signaling completion to the owner.
func (s *JobScraper) RegisterExecutionCallback(cb func()) {
	s.callback = cb
}

// SetDatasource injects the store the job writes to. Must be called before
// Init.
func (s *JobScraper) SetDatasource(ds datasource.Datasource) {
	s.ds = ds
}

// Records returns the extracted records per platform, populated by Init.
func (s *JobScraper) Records() map[string][]record.JobRecord {
	return s.records
}

// Init acquires the browser session and runs the job synchronously. The
// session is closed and the execution callback invoked on every exit path
// once the session exists; a launch failure returns before either.
func (s *JobScraper) Init(ctx context.Context) (err error) {
	if s.ds == nil {
		return errors.New("no datasource configured for job in JobScraper.Init")
	}

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("%w in JobScraper.Init: %v", ErrBrowser, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Error("unable to close browser session", slog.String("error", cerr.Error()))
		}
		if s.callback != nil {
			s.callback()
		}
	}()

	return s.run(ctx, session)
}

func (s *JobScraper) run(ctx context.Context, session browser.Session) error {
	for _, p := range s.platforms {
		links, err := s.collectLinks(ctx, session, p)
		if err != nil {
			return fmt.Errorf("%w for platform %s: %v", ErrLinkDiscovery, p.Name(), err)
		}
		s.links[p.Name()] = links
		s.logger.Info("collected job links",
			slog.String("platform", p.Name()),
			slog.Int("links", len(links)))
	}

	for _, p := range s.platforms {
		if len(s.links[p.Name()]) == 0 {
			continue
		}
		if err := s.extract(ctx, session, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *JobScraper) collectLinks(ctx context.Context, session browser.Session, p platform.Platform) ([]string, error) {
	page, err := session.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowser, err)
	}
	defer page.Close()

	return p.JobLinks(ctx, page, p.URL(s.params.Role), s.platformParams())
}

// extract visits every collected link for the platform, persisting each
// record as it is produced. A single failed listing is logged and skipped;
// a write failure aborts the job.
func (s *JobScraper) extract(ctx context.Context, session browser.Session, p platform.Platform) error {
	page, err := session.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowser, err)
	}
	defer page.Close()

	for _, link := range s.links[p.Name()] {
		rec, err := p.JobInfo(ctx, page, link, s.platformParams())
		if err != nil {
			metrics.ListingFailures.Inc()
			s.logger.Error("skipping listing after extraction failure",
				slog.String("platform", p.Name()),
				slog.String("url", link),
				slog.String("error", err.Error()))
			continue
		}
		if err := s.post(ctx, rec); err != nil {
			return err
		}
		metrics.ListingsScraped.Inc()
		s.records[p.Name()] = append(s.records[p.Name()], rec)
	}
	return nil
}

// post writes the record when the target table exists.
func (s *JobScraper) post(ctx context.Context, rec record.JobRecord) error {
	table := s.ds.Tables().JobRecords
	if !table.Created() {
		return nil
	}
	s.logger.Debug("inserting job record", slog.String("url", rec.URL))
	if err := table.PostRow(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *JobScraper) platformParams() platform.Params {
	return platform.Params{
		Role:        s.params.Role,
		Tags:        s.params.Tags,
		Pages:       s.params.Pages,
		SettleDelay: s.params.SettleDelay,
	}
}
