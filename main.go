package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alwedo/jobscout/config"
	"github.com/alwedo/jobscout/datasource"
	"github.com/alwedo/jobscout/datasource/postgres"
	"github.com/alwedo/jobscout/datasource/redisds"
	"github.com/alwedo/jobscout/queue"
	"github.com/alwedo/jobscout/scraper"
	"github.com/alwedo/jobscout/scraper/browser"
	"github.com/alwedo/jobscout/scraper/platform/computrabajo"
	"github.com/alwedo/jobscout/search"
	"github.com/alwedo/jobscout/server"
	"github.com/go-co-op/gocron/v2"

	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	var (
		ctx    = context.Background()
		svrErr = make(chan error, 1)
		c      = make(chan os.Signal, 1)
	)

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	logger, logCloser := initLogger(cfg.LogFile)
	defer logCloser.Close()

	registry := datasource.NewRegistry(logger, postgres.Backend(), redisds.Backend())
	ds := initDatasource(ctx, registry, cfg.ConnString)
	defer ds.Disconnect(ctx)

	launcher := browser.NewLauncher(logger)
	q := queue.New(logger,
		queue.Params{BatchSize: cfg.BatchSize, ConnString: cfg.ConnString},
		ds, computrabajo.New(logger))

	defaults := scraper.Params{
		Tags:        search.DefaultTags,
		Pages:       cfg.Pages,
		SettleDelay: cfg.SettleDelay,
	}

	scheduler := initScheduler(logger, q, launcher, defaults, cfg)
	if scheduler != nil {
		scheduler.Start()
		defer scheduler.Shutdown()
	}

	svr := server.New(logger, cfg.Addr, q, registry, ds, launcher, defaults)
	defer svr.Shutdown(ctx)

	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Println("starting server on " + svr.Addr)
		if err := svr.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Println(err)
			} else {
				log.Println(err)
				svrErr <- err
			}
		}
	}()

	select {
	case <-svrErr:
		log.Println("\nserver error, shutting down...")
	case <-c:
		log.Println("\nshutting down...")
	}
}

func initLogger(path string) (*slog.Logger, io.Closer) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), out
}

func initDatasource(ctx context.Context, registry *datasource.Registry, connStr string) datasource.Datasource {
	ds, err := registry.Open(connStr)
	if err != nil {
		log.Fatalf("unable to open datasource: %v", err)
	}
	if err := ds.Connect(ctx, connStr); err != nil {
		log.Fatalf("unable to connect %s datasource: %v", ds.Name(), err)
	}
	if err := ds.EnsureCreated(ctx); err != nil {
		log.Fatalf("unable to create tables: %v", err)
	}
	return ds
}

// initScheduler sets up the periodic re-scrape of the configured roles.
// Returns nil when no roles or no interval is configured.
func initScheduler(logger *slog.Logger, q *queue.Queue, launcher browser.Launcher, defaults scraper.Params, cfg *config.Config) gocron.Scheduler {
	if len(cfg.RefreshRoles) == 0 || cfg.RefreshInterval <= 0 {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("unable to create scheduler: %v", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.RefreshInterval),
		gocron.NewTask(func() {
			for _, role := range cfg.RefreshRoles {
				params := defaults
				params.Role = role
				q.Add(scraper.New(logger, launcher, params))
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
			defer cancel()
			if err := q.ExecuteBatch(ctx); err != nil && !errors.Is(err, queue.ErrQueueState) {
				logger.Error("scheduled batch failed", slog.String("error", err.Error()))
			}
		}),
	)
	if err != nil {
		log.Fatalf("unable to schedule refresh job: %v", err)
	}
	return scheduler
}
