// Package main provides the feedsync command that turns the product feed into static JSON artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"feedsync/internal/config"
	"feedsync/internal/logger"
	"feedsync/internal/models"
	"feedsync/internal/pipeline"
	"feedsync/internal/report"
	"feedsync/internal/writer"
)

const defaultConfigFile = "configs/feedsync.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to YAML configuration file")
	feedURL := flag.String("url", "", "Feed URL to fetch (overrides config)")
	localFile := flag.String("file", "", "Local feed XML file (bypasses HTTP fetch)")
	outputDir := flag.String("output", "", "Output directory for JSON artifacts (overrides config)")
	affiliateID := flag.String("affiliate-id", "", "Affiliate ID appended to product links (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pretty := flag.Bool("pretty", false, "Indent JSON artifacts")
	metricsFile := flag.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()

		return 0
	}

	log := logger.NewLogger("info").With("run_id", uuid.NewString())

	config.LoadDotEnv(".env")

	cfg, err := loadConfig(*configFile, log)
	if err != nil {
		log.Error("❌ Failed to load config", "error", err)

		return 1
	}

	if err := cfg.ApplyEnv(); err != nil {
		log.Error("❌ Invalid environment override", "error", err)

		return 1
	}

	applyFlags(cfg, *feedURL, *localFile, *outputDir, *affiliateID, *logLevel, *pretty, *metricsFile)

	if err := cfg.Validate(); err != nil {
		log.Error("❌ Invalid configuration", "error", err)

		return 1
	}

	log.SetLevel(cfg.Logging.Level)
	log.Info("⚙️  Configuration ready", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		log.Error("❌ Failed to open output sink", "sink", cfg.Output.Sink, "error", err)

		return 1
	}
	defer closeSink()

	p := pipeline.New(cfg, pipeline.Deps{
		Sink:     sink,
		Observer: pipeline.NewLogObserver(log, cfg.Logging.ShowProgress),
	})

	log.Info("🚀 Starting feed sync", "source", cfg.Feed.GetSource())

	result, runErr := p.Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := p.Metrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("⚠️  Could not write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if runErr != nil {
		log.Error("❌ Feed sync failed", "error", runErr)

		return 1
	}

	if cfg.Logging.ShowSummary {
		summary := report.Summary{
			Source:      cfg.Feed.GetSource(),
			Manifest:    result.Catalog.Manifest,
			Artifacts:   result.Artifacts,
			Locate:      p.Location,
			Duration:    result.Duration,
			FeedBytes:   result.FeedBytes,
			InvalidURLs: result.InvalidURLs,
		}

		if err := report.Print(os.Stdout, summary); err != nil {
			log.Warn("⚠️  Could not print summary", "error", err)
		}
	}

	log.Info("✨ Feed sync complete",
		"products", result.Catalog.Manifest.TotalProducts,
		"manifest", p.Location(models.FileManifest),
		"duration", result.Duration)

	return 0
}

// loadConfig reads the config file given by flag, falls back to the default
// config path when present and otherwise uses built-in defaults.
func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	if path == "" {
		if _, statErr := os.Stat(defaultConfigFile); statErr != nil {
			log.Info("⚙️  Using built-in defaults")

			return config.Default(), nil
		}

		path = defaultConfigFile
	}

	log.Info("⚙️  Loading configuration", "path", path)

	return config.LoadConfig(path)
}

func applyFlags(cfg *config.Config, feedURL, localFile, outputDir, affiliateID, logLevel string, pretty bool, metricsFile string) {
	if feedURL != "" {
		cfg.Feed.URL = feedURL
		cfg.Feed.File = ""
	}

	if localFile != "" {
		cfg.Feed.File = localFile
	}

	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	if affiliateID != "" {
		cfg.Affiliate.ID = affiliateID
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if pretty {
		cfg.Output.PrettyPrint = true
	}

	if metricsFile != "" {
		cfg.Metrics.Textfile = metricsFile
	}
}

// openSink returns the configured sink and a func releasing its resources.
func openSink(ctx context.Context, cfg *config.Config) (writer.Sink, func(), error) {
	if cfg.Output.Sink != config.SinkGCS {
		return writer.NewLocalSink(cfg.Output.Dir), func() {}, nil
	}

	gcs, err := writer.NewGCSSink(ctx, cfg.Output.GCS.Bucket, cfg.Output.GCS.Prefix, cfg.Output.GCS.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}

	return gcs, func() { _ = gcs.Close() }, nil
}

func printUsage() {
	fmt.Println("Usage: ./bin/feedsync [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Defaults:        ./bin/feedsync (reads configs/feedsync.yaml if it exists)")
	fmt.Println("  2. Config-based:    ./bin/feedsync -config configs/feedsync.yaml")
	fmt.Println("  3. Local file:      ./bin/feedsync -file products.xml -output public")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment (also read from .env):")
	fmt.Println("  FEED_URL, FEED_FILE, FEED_MAX_REDIRECTS, AFFILIATE_ID, OUTPUT_DIR,")
	fmt.Println("  OUTPUT_SINK, GCS_BUCKET, LOG_LEVEL, METRICS_TEXTFILE")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/feedsync -output public -pretty")
	fmt.Println("  ./bin/feedsync -url https://www.horsimo.cz/google/export/products.xml -affiliate-id 123")
	fmt.Println("  ./bin/feedsync -config configs/feedsync.yaml -metrics-file /var/lib/node_exporter/feedsync.prom")
}
