package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/cadence"
	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/crawler"
	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/internal/output"
	"github.com/Adda-Baaj/khobor-digest/internal/render"
	"github.com/Adda-Baaj/khobor-digest/internal/sources"
	"github.com/Adda-Baaj/khobor-digest/internal/storage"
	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-digest/pkg/publishers"
	"github.com/Adda-Baaj/khobor-digest/pkg/reddit"
)

// Digester runs one digest generation: read the community lists, fetch,
// render, write, then advance the monthly marker and notify sinks.
type Digester struct {
	cfg      *config.Config
	crawl    *crawler.Service
	gate     *cadence.Gate
	renderer *render.Renderer
	writer   *output.Writer
	fanout   *publishers.Fanout
	store    storage.Store
	log      logger.Logger
}

// Result describes a completed run.
type Result struct {
	Path           string
	PeriodTag      string
	Digest         domain.Digest
	MonthlyFetched bool
}

// Option customises a Digester.
type Option func(*options)

type options struct {
	now     func() time.Time
	fetcher crawler.CommunityFetcher
}

// WithClock fixes the time used for the period tag and the cadence check.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFetcher replaces the ranking API client.
func WithFetcher(f crawler.CommunityFetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// NewDigester builds the runtime from config.
func NewDigester(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Digester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	fetcher := o.fetcher
	if fetcher == nil {
		client, err := reddit.NewClient(
			httpclient.NewRestyClient(cfg.RequestTimeout, cfg.UserAgent),
			reddit.Options{
				BaseURL:   cfg.APIBaseURL,
				SiteURL:   reddit.DefaultSiteURL,
				UserAgent: cfg.UserAgent,
				PostLimit: cfg.PostLimit,
				MinScore:  cfg.MinScore,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("init reddit client: %w", err)
		}
		fetcher = client
	}

	renderer, err := render.New(reddit.DefaultSiteURL)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	writer, err := output.NewWriter(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init writer: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storePath := markerPath(cfg)
	store, err := storage.NewStore(cfg.MarkerStore, storePath)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.MarkerStore,
		"path": storePath,
	})

	return &Digester{
		cfg:      cfg,
		crawl:    crawler.NewService(fetcher, log),
		gate:     cadence.NewGate(store, log, cadence.WithClock(o.now)),
		renderer: renderer,
		writer:   writer,
		fanout:   fanout,
		store:    store,
		log:      log,
	}, nil
}

func markerPath(cfg *config.Config) string {
	if cfg.MarkerStore == storage.TypeBBolt {
		return cfg.BBoltPath
	}
	return cfg.MarkerPath
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.DefaultRegistry().BuildAll(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run performs a single digest generation and releases the runtime's
// resources when done.
func (d *Digester) Run(ctx context.Context) (Result, error) {
	if d == nil || d.crawl == nil {
		return Result{}, fmt.Errorf("digester is not initialized")
	}
	defer d.close()

	began := time.Now()
	start := d.gate.Now()
	tag := output.PeriodTag(start)

	lists, err := sources.LoadLists(d.cfg.WeeklySourcesFile, d.cfg.MonthlySourcesFile, d.log)
	if err != nil {
		return Result{}, fmt.Errorf("load community lists: %w", err)
	}

	fetchMonthly := len(lists.Monthly) > 0 && d.gate.ShouldFetchMonthly(ctx)
	d.log.InfoObj("digest run starting", "run_meta", map[string]any{
		"period_tag":    tag,
		"weekly_count":  len(lists.Weekly),
		"monthly_count": len(lists.Monthly),
		"monthly_due":   fetchMonthly,
	})

	digest := domain.Digest{HasMonthly: fetchMonthly}
	if digest.Weekly, err = d.crawl.Run(ctx, lists.Weekly, domain.WindowWeek); err != nil {
		return Result{}, fmt.Errorf("fetch weekly group: %w", err)
	}
	if fetchMonthly {
		if digest.Monthly, err = d.crawl.Run(ctx, lists.Monthly, domain.WindowMonth); err != nil {
			return Result{}, fmt.Errorf("fetch monthly group: %w", err)
		}
	}

	doc, err := d.renderer.Render(digest, tag, start)
	if err != nil {
		return Result{}, fmt.Errorf("render digest: %w", err)
	}
	path, err := d.writer.Write(doc, tag)
	if err != nil {
		return Result{}, fmt.Errorf("write digest: %w", err)
	}

	switch {
	case !fetchMonthly:
	case !anyFetched(digest.Monthly):
		d.log.WarnObj("every monthly community failed; cadence marker left unchanged", "failed_communities", digest.FailedCommunities())
	default:
		if err := d.gate.RecordMonthlyRun(ctx, start.Year(), start.Month()); err != nil {
			d.log.ErrorObj("cadence marker update failed", "error", err)
		}
	}

	failed := digest.FailedCommunities()
	d.log.InfoObj("digest written", "run_result", map[string]any{
		"path":               path,
		"posts":              digest.PostCount(),
		"failed_communities": failed,
		"elapsed_ms":         time.Since(began).Milliseconds(),
	})

	d.notify(ctx, tag, path, start, digest)

	return Result{Path: path, PeriodTag: tag, Digest: digest, MonthlyFetched: fetchMonthly}, nil
}

// anyFetched reports whether at least one section was fetched without error.
func anyFetched(sections []domain.Section) bool {
	for _, s := range sections {
		if s.Err == nil {
			return true
		}
	}
	return false
}

func (d *Digester) notify(ctx context.Context, tag, path string, at time.Time, digest domain.Digest) {
	if d.fanout.Size() == 0 {
		return
	}

	evt := publishers.NewEvent(tag, path, at)
	evt.WeeklyCount = len(digest.Weekly)
	evt.MonthlyCount = len(digest.Monthly)
	evt.PostCount = digest.PostCount()
	evt.MonthlyFetched = digest.HasMonthly
	evt.FailedCommunities = digest.FailedCommunities()

	sent, err := d.fanout.Publish(ctx, evt)
	if err != nil {
		d.log.WarnObj("digest notification failed", "publish_error", map[string]any{
			"run_id":    evt.RunID,
			"delivered": sent,
			"error":     err.Error(),
		})
		return
	}
	d.log.InfoObj("digest notification sent", "publish_result", map[string]any{
		"run_id":    evt.RunID,
		"delivered": sent,
	})
}

func (d *Digester) close() {
	if err := errors.Join(d.store.Close(), d.fanout.Close()); err != nil {
		d.log.ErrorObj("digester close failed", "error", err)
	}
}
