package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"exhibit_scout/pkg/core/config"
	"exhibit_scout/pkg/core/edgar"
	"exhibit_scout/pkg/core/exhibit"
	"exhibit_scout/pkg/core/forms"
	"exhibit_scout/pkg/core/store"
	"exhibit_scout/pkg/core/textnorm"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app is everything a command needs, built once at startup and closed on exit.
type app struct {
	cfg       *config.Config
	runID     string
	logger    *log.Logger
	logFile   *os.File
	keywords  []string
	client    *edgar.Client
	processor *forms.Processor
	pool      *pgxpool.Pool
}

type appOptions struct {
	configPath string
	envFiles   []string
	outputDir  string
	verbose    bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	if err := config.LoadEnv(opts.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.outputDir != "" {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, runID: uuid.New().String()}
	if err := a.openLog(opts.verbose); err != nil {
		return nil, err
	}

	a.keywords, err = cfg.Matching.ResolveKeywords()
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Archive.UserAgent == edgar.DefaultUserAgent {
		a.logger.Printf("[WARN] Using the default User-Agent; set %s to identify yourself to the archive", config.EnvUserAgent)
	}

	manifest, err := a.manifestSink(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client, err = a.buildClient()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.processor = a.buildProcessor(manifest)
	return a, nil
}

func (a *app) openLog(verbose bool) error {
	var out io.Writer = io.Discard
	if path := a.cfg.Paths.LogFile; path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	if verbose || a.logFile == nil {
		out = io.MultiWriter(out, os.Stderr)
	}
	a.logger = log.New(out, "", log.LstdFlags)
	return nil
}

func (a *app) manifestSink(ctx context.Context) (exhibit.ManifestSink, error) {
	csvSink := store.NewCSVManifest(a.cfg.Paths.Manifest)
	if a.cfg.Database.URL == "" {
		return csvSink, nil
	}

	pool, err := store.OpenPool(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	repo := store.NewManifestRepo(pool, a.runID)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	a.logger.Printf("[INFO] Mirroring manifest rows to Postgres (run %s)", a.runID)
	return store.MultiManifest{csvSink, repo}, nil
}

func (a *app) buildClient() (*edgar.Client, error) {
	cfg := a.cfg
	opts := []edgar.Option{
		edgar.WithHTTPClient(&http.Client{Timeout: cfg.Archive.Timeout}),
		edgar.WithUserAgent(cfg.Archive.UserAgent),
		edgar.WithRateLimit(cfg.Archive.RateLimit),
		edgar.WithRetryPolicy(cfg.Archive.RetryPolicy()),
		edgar.WithLogger(a.logger),
	}
	if cfg.Archive.CacheDir != "" {
		cache, err := edgar.NewPageCache(cfg.Archive.CacheDir)
		if err != nil {
			return nil, err
		}
		a.logger.Printf("[INFO] Caching archive pages in %s", cache.Dir())
		opts = append(opts, edgar.WithPageCache(cache))
	}
	return edgar.NewClient(opts...), nil
}

func (a *app) buildProcessor(manifest exhibit.ManifestSink) *forms.Processor {
	cfg := a.cfg
	client := a.client
	downloader := edgar.NewDownloader(client)
	layout := store.NewLayout(cfg.Paths.OutputDir)

	scanner := exhibit.NewScanner(exhibit.NewKeywordSet(a.keywords))
	scanner.DedupeDescriptions = cfg.Matching.DedupeDescriptions
	scanner.Cleaner = textnorm.Cleaner{KeepParentheses: cfg.Matching.KeepParentheses}

	return &forms.Processor{
		BaseURL: cfg.Archive.BaseURL,
		Fetcher: client,
		Scanner: scanner,
		Resolver: &exhibit.Resolver{
			BaseURL:    cfg.Archive.BaseURL,
			Domain:     cfg.Archive.Domain,
			Downloader: downloader,
			Manifest:   manifest,
			Paths:      layout,
			Logger:     a.logger,
		},
		Reconciler: &exhibit.Reconciler{
			Downloader: downloader,
			Manifest:   manifest,
			Overflow:   store.NewOverflowFile(),
			Paths:      layout,
			Logger:     a.logger,
		},
		Logger: a.logger,
	}
}

// Close releases the database pool and flushes the log file.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.logFile != nil {
		a.logFile.Sync()
		a.logFile.Close()
	}
}
