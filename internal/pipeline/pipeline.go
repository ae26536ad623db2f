// Package pipeline wires the feed stages together: fetch, parse, normalize,
// sort, partition and write. Each stage consumes the complete output of the
// previous one.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedsync/internal/catalog"
	"feedsync/internal/config"
	"feedsync/internal/fetcher"
	"feedsync/internal/metrics"
	"feedsync/internal/models"
	"feedsync/internal/normalizer"
	"feedsync/internal/parser"
	"feedsync/internal/writer"
	"feedsync/pkg/metadata"
)

// Deps are the collaborators injected into a pipeline. Only Sink is required.
type Deps struct {
	Sink       writer.Sink
	Observer   Observer
	Metrics    *metrics.Recorder
	HTTPClient *http.Client
	Now        func() time.Time
}

// Result describes a completed run.
type Result struct {
	Catalog     models.Catalog
	Artifacts   []metadata.Artifact
	FeedBytes   int64
	InvalidURLs int
	Duration    time.Duration
}

// Pipeline runs the feed job once per Run call.
type Pipeline struct {
	cfg       *config.Config
	fetcher   *fetcher.Fetcher
	parser    *parser.Parser
	processor *normalizer.Processor
	writer    *writer.Writer
	metrics   *metrics.Recorder
	observer  Observer
	now       func() time.Time
}

// New builds a pipeline from configuration and dependencies.
func New(cfg *config.Config, deps Deps) *Pipeline {
	observer := deps.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	rec := deps.Metrics
	if rec == nil {
		rec = metrics.New()
	}

	return &Pipeline{
		cfg: cfg,
		fetcher: fetcher.New(fetcher.Options{
			Client:       deps.HTTPClient,
			Headers:      cfg.Feed.Headers,
			Timeout:      cfg.Feed.GetTimeout(),
			MaxRedirects: cfg.Feed.MaxRedirects,
			ProgressStep: cfg.ProgressStepBytes(),
			Progress:     observer.Download,
			Redirect:     observer.Redirect,
		}),
		parser: parser.NewParser(),
		processor: normalizer.NewProcessor(normalizer.Options{
			AffiliateParam: cfg.Affiliate.Param,
			AffiliateID:    cfg.Affiliate.ID,
			Warn:           observer.Warning,
		}),
		writer:   writer.New(deps.Sink, cfg.Output.PrettyPrint),
		metrics:  rec,
		observer: observer,
		now:      now,
	}
}

// Metrics returns the recorder the pipeline reports into.
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// Run executes every stage once. Any error aborts the run; nothing is retried.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()

	result, stage, err := p.run(ctx)
	if err != nil {
		p.metrics.Failures.WithLabelValues(string(stage)).Inc()
		p.metrics.ObserveRun(start, p.now(), false)

		return nil, fmt.Errorf("%s failed: %w", stage, err)
	}

	end := p.now()
	result.Duration = end.Sub(start)
	p.metrics.ObserveRun(start, end, true)

	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, Stage, error) {
	// 1. Fetch
	p.observer.StageStarted(StageFetch)

	raw, err := p.fetch(ctx)
	if err != nil {
		return nil, StageFetch, err
	}

	feedBytes := int64(len(raw))
	p.metrics.FeedBytes.Set(float64(feedBytes))
	p.observer.StageFinished(StageFetch, "source", p.cfg.Feed.GetSource(), "bytes", feedBytes)

	// 2. Parse
	p.observer.StageStarted(StageParse)

	items, err := p.parser.ParseString(raw)
	if err != nil {
		return nil, StageParse, err
	}

	p.observer.StageFinished(StageParse, "items", len(items))

	// 3. Normalize
	p.observer.StageStarted(StageNormalize)

	normalized := p.processor.Process(items)
	p.metrics.InvalidURLs.Add(float64(normalized.InvalidURLs))
	p.observer.StageFinished(StageNormalize, "products", len(normalized.Products), "invalid_urls", normalized.InvalidURLs)

	// 4. Sort
	p.observer.StageStarted(StageSort)

	products := normalized.Products
	catalog.Sort(products)
	p.observer.StageFinished(StageSort, "products", len(products))

	// 5. Partition
	p.observer.StageStarted(StagePartition)

	cat := catalog.Build(products, catalog.Options{
		SampleSize:       p.cfg.Catalog.SampleSize,
		DescriptionLimit: p.cfg.Catalog.SearchDescriptionLimit,
		Now:              p.now,
	})

	p.metrics.Products.Set(float64(len(cat.Products)))

	for _, b := range cat.Buckets {
		p.metrics.CategoryProducts.WithLabelValues(b.Name).Set(float64(len(b.Products)))
	}

	p.observer.StageFinished(StagePartition, "sample", len(cat.Sample), "categories", len(cat.Buckets))

	// 6. Write
	p.observer.StageStarted(StageWrite)

	artifacts, err := p.writer.WriteCatalog(ctx, cat)
	p.recordArtifacts(artifacts)

	if err != nil {
		return nil, StageWrite, err
	}

	p.observer.StageFinished(StageWrite, "artifacts", len(artifacts), "manifest", p.writer.Location(models.FileManifest))

	return &Result{
		Catalog:     cat,
		Artifacts:   artifacts,
		FeedBytes:   feedBytes,
		InvalidURLs: normalized.InvalidURLs,
	}, "", nil
}

func (p *Pipeline) fetch(ctx context.Context) (string, error) {
	if p.cfg.Feed.IsLocalFile() {
		return p.fetcher.ReadLocalFile(p.cfg.Feed.File)
	}

	return p.fetcher.Fetch(ctx, p.cfg.Feed.URL)
}

func (p *Pipeline) recordArtifacts(artifacts []metadata.Artifact) {
	for _, a := range artifacts {
		p.metrics.ArtifactsWritten.Inc()
		p.metrics.ArtifactBytes.Add(float64(a.Bytes))
	}
}

// Location reports where an artifact is written.
func (p *Pipeline) Location(name string) string {
	return p.writer.Location(name)
}
