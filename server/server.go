// Package server exposes the scraping system as a small JSON API: submit
// scrape jobs, inspect the queue, read the aggregated report and export the
// stored records.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/export"
	"github.com/alwedo/jobscout/metrics"
	"github.com/alwedo/jobscout/queue"
	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper"
	"github.com/alwedo/jobscout/scraper/browser"
	"github.com/alwedo/jobscout/search"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Query Params.
	queryParamRole = "role"
	queryParamTags = "tags"

	queryParamPages = "pages"
	queryParamConn  = "connection_string"
)

type server struct {
	logger   *slog.Logger
	queue    *queue.Queue
	registry *datasource.Registry
	launcher browser.Launcher
	defaults scraper.Params

	// mu guards ds, which the switch handler replaces.
	mu sync.Mutex
	ds datasource.Datasource
}

// New wires the handlers onto a mux and returns a ready-to-listen server.
// defaults fills the per-job parameters a request leaves unset.
func New(l *slog.Logger, addr string, q *queue.Queue, reg *datasource.Registry, ds datasource.Datasource, launcher browser.Launcher, defaults scraper.Params) *http.Server {
	s := &server{
		logger:   l,
		queue:    q,
		registry: reg,
		launcher: launcher,
		defaults: defaults,
		ds:       ds,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scrapes", s.createScrape())
	mux.HandleFunc("POST /executions", s.execute())
	mux.HandleFunc("GET /status", s.status())
	mux.HandleFunc("GET /report", s.report())
	mux.HandleFunc("GET /export", s.export())
	mux.HandleFunc("PUT /datasource", s.switchDatasource())
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           metrics.HTTPMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// createScrape enqueues one scrape job and kicks a batch execution in the
// background. Responds 202 with the job id; the job itself runs later.
func (s *server) createScrape() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validateParams([]string{queryParamRole}, w, r)
		if err != nil {
			s.logger.Info("missing params in server.createScrape", slog.String("error", err.Error()))
			return
		}

		jobParams := s.defaults
		jobParams.Role = params.Get(queryParamRole)
		if tags := r.FormValue(queryParamTags); tags != "" {
			jobParams.Tags = strings.Split(tags, ",")
		}
		if len(jobParams.Tags) == 0 {
			jobParams.Tags = search.DefaultTags
		}
		if p := r.FormValue(queryParamPages); p != "" {
			pages, err := strconv.Atoi(p)
			if err != nil || pages < 1 {
				http.Error(w, "invalid param pages, must be a positive integer", http.StatusBadRequest)
				return
			}
			jobParams.Pages = pages
		}

		id := s.queue.Add(scraper.New(s.logger, s.launcher, jobParams))
		// The request context dies with this handler; the batch must not.
		go func() {
			if err := s.queue.ExecuteBatch(context.Background()); err != nil && !errors.Is(err, queue.ErrQueueState) {
				s.logger.Error("batch execution failed in server.createScrape", slog.String("error", err.Error()))
			}
		}()

		s.writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
	}
}

// execute drains the pending queue synchronously. An idle, empty queue is a
// conflict, not a server failure.
func (s *server) execute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.queue.ExecuteBatch(r.Context()); err != nil {
			if errors.Is(err, queue.ErrQueueState) {
				http.Error(w, "nothing to execute", http.StatusConflict)
				return
			}
			s.internalError(w, "batch execution failed in server.execute", err)
			return
		}
		s.writeJSON(w, http.StatusOK, s.queue.Status())
	}
}

func (s *server) status() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, s.queue.Status())
	}
}

// reportMetrics mirrors stats.Metrics with the float fields nullable, since
// the aggregates are NaN when there is no data and JSON has no NaN.
type reportMetrics struct {
	Salaries        []int          `json:"salaries"`
	Mean            *float64       `json:"mean"`
	StdDev          *float64       `json:"std_dev"`
	Technologies    map[string]int `json:"technologies"`
	AvgTechnologies *float64       `json:"avg_technologies"`
}

type report struct {
	Rows    []record.JobRecord `json:"rows"`
	Metrics reportMetrics      `json:"metrics"`
}

func (s *server) report() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := s.datasource().Tables().JobRecords
		rows, err := table.GetRows(r.Context(), nil)
		if err != nil {
			s.internalError(w, "failed to read records in server.report", err)
			return
		}
		m := table.GetMetrics(rows)
		s.writeJSON(w, http.StatusOK, report{
			Rows: rows,
			Metrics: reportMetrics{
				Salaries:        m.Salaries,
				Mean:            nullable(m.Mean),
				StdDev:          nullable(m.StdDev),
				Technologies:    m.Technologies,
				AvgTechnologies: nullable(m.AvgTechnologies),
			},
		})
	}
}

func (s *server) export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.datasource().Tables().JobRecords.GetRows(r.Context(), nil)
		if err != nil {
			s.internalError(w, "failed to read records in server.export", err)
			return
		}
		w.Header().Add("Content-Type", "text/csv")
		w.Header().Add("Content-Disposition", `attachment; filename="job_records.csv"`)
		if err := export.CSV(w, rows); err != nil {
			s.logger.Error("failed to write csv in server.export", slog.String("error", err.Error()))
			return
		}
	}
}

// switchDatasource swaps the backing store behind the running system. The
// old connection is torn down before the new one comes up, and the queue is
// repointed so subsequently dispatched jobs write to the new store.
func (s *server) switchDatasource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connStr := r.FormValue(queryParamConn)
		if connStr == "" {
			http.Error(w, "missing param "+queryParamConn, http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		ds, err := s.registry.Switch(r.Context(), s.ds, connStr)
		if err != nil {
			if errors.Is(err, datasource.ErrUnsupported) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.internalError(w, "failed to switch datasource in server.switchDatasource", err)
			return
		}
		s.ds = ds
		s.queue.SetDatasource(ds)
		s.writeJSON(w, http.StatusOK, map[string]string{"name": ds.Name()})
	}
}

func (s *server) datasource() datasource.Datasource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "it's not you it's me", http.StatusInternalServerError)
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// Input validation regex.
var re = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// validateParams receives a list of params, validates they've been supplied in the request and normalizes them.
// If a param is missing or contains invalid characters, it will respond with 400.
func validateParams(params []string, w http.ResponseWriter, r *http.Request) (url.Values, error) {
	missing := []string{}
	invalid := []string{}
	valid := url.Values{}
	for _, p := range params {
		v := r.FormValue(p)
		switch {
		case v == "":
			missing = append(missing, p)
		case !re.MatchString(v):
			invalid = append(invalid, p)
		default:
			valid.Add(p, strings.ToLower(strings.TrimSpace(v)))
		}
	}
	if len(missing) != 0 || len(invalid) != 0 {
		w.WriteHeader(http.StatusBadRequest)
		var errStr []string
		if len(missing) != 0 {
			errStr = append(errStr, fmt.Sprintf("missing params: %v", missing))
		}
		if len(invalid) != 0 {
			errStr = append(errStr, fmt.Sprintf("invalid params: %v, only [A-Za-z0-9 ] allowed", invalid))
		}
		_, err := fmt.Fprint(w, strings.Join(errStr, ", "))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return nil, fmt.Errorf("unable to write response in validateParams: %w", err)
		}
		return nil, fmt.Errorf("missing params in validateParams: %v", missing)
	}
	return valid, nil
}
