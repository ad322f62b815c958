package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/everstacklabs/modelprices/internal/cache"
	"github.com/everstacklabs/modelprices/internal/catalog"
	"github.com/everstacklabs/modelprices/internal/config"
	"github.com/everstacklabs/modelprices/internal/httpclient"
	"github.com/everstacklabs/modelprices/internal/source"
)

// ExitCode constants for CLI.
const (
	ExitSuccess = 0
	ExitFailure = 1 // Fetch or write failed
)

// Fetcher retrieves the raw catalog.
type Fetcher interface {
	Fetch(ctx context.Context) (*source.RawCatalog, error)
	URL() string
}

// Pipeline runs fetch → format → persist once.
type Pipeline struct {
	cfg     *config.Config
	fetcher Fetcher
	report  *Reporter
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFetcher replaces the fetcher built from the config.
func WithFetcher(f Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithOutput sends progress text to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.report = NewReporter(w) }
}

// WithClock sets the time source used for the snapshot timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a new Pipeline.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.report == nil {
		p.report = NewReporter(os.Stdout)
	}
	if p.fetcher == nil {
		p.fetcher = source.NewLiteLLM(cfg.SourceURL, newClient(cfg))
	}
	return p
}

func newClient(cfg *config.Config) *httpclient.Client {
	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithRateLimit(cfg.RateLimit),
	}
	if cfg.CacheDir != "" {
		fc, err := cache.New(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			slog.Warn("failed to create cache, continuing without", "error", err)
		} else {
			opts = append(opts, httpclient.WithCache(fc))
		}
	}
	return httpclient.New(opts...)
}

// Result holds the outcome of a successful run.
type Result struct {
	Snapshot     *catalog.Snapshot
	OutputPath   string
	ManifestPath string
	Elapsed      time.Duration
}

// Run fetches, formats, and writes the snapshot. A fetch failure returns
// before anything is written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	p.report.Banner("Model price fetcher")

	// 1. Fetch
	p.report.Step("Fetching price catalog from %s ...", p.fetcher.URL())
	raw, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.report.Failed("Fetch failed: %v", err)
		return nil, err
	}
	p.report.Done("Fetched %d entries", raw.Len())

	// 2. Format
	p.report.Step("Formatting data ...")
	snap := catalog.FormatAt(raw, p.now())
	p.report.Done("Formatted %d models", snap.TotalModels)

	// 3. Persist
	res := &Result{Snapshot: snap, OutputPath: p.cfg.OutputPath}
	if res.OutputPath == "" {
		res.OutputPath = catalog.DefaultPath
	}
	p.report.Step("Saving to %s ...", res.OutputPath)
	if err := catalog.Write(snap, res.OutputPath); err != nil {
		p.report.Failed("Save failed: %v", err)
		return nil, err
	}
	p.report.Done("Saved")

	// 4. Optional manifest
	if p.cfg.ManifestPath != "" {
		if err := catalog.WriteManifest(p.cfg.ManifestPath, snap, p.fetcher.URL(), res.OutputPath); err != nil {
			p.report.Failed("Manifest failed: %v", err)
			return nil, fmt.Errorf("manifest: %w", err)
		}
		res.ManifestPath = p.cfg.ManifestPath
	}

	res.Elapsed = time.Since(start)
	slog.Info("snapshot written",
		"path", res.OutputPath,
		"models", snap.TotalModels,
		"elapsed", res.Elapsed)

	p.report.Summary(res)
	return res, nil
}
