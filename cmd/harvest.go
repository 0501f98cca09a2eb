package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gcstorage "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Baccarat456/experience-harvester/internal/api"
	"github.com/Baccarat456/experience-harvester/internal/apiclient"
	"github.com/Baccarat456/experience-harvester/internal/config"
	"github.com/Baccarat456/experience-harvester/internal/dataset"
	"github.com/Baccarat456/experience-harvester/internal/logging"
	"github.com/Baccarat456/experience-harvester/internal/metrics"
	"github.com/Baccarat456/experience-harvester/internal/notify"
	"github.com/Baccarat456/experience-harvester/internal/scrape"
	"github.com/Baccarat456/experience-harvester/internal/storage"
	"github.com/Baccarat456/experience-harvester/internal/storage/gcs"
	"github.com/Baccarat456/experience-harvester/internal/storage/local"
	"github.com/Baccarat456/experience-harvester/internal/storage/memory"
)

// newHarvestCmd creates and configures the 'harvest' subcommand, which runs
// one full crawl in the configured mode.
func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Runs a harvest over the configured seeds",
		Long: `Crawls the configured experience pages, merges embedded page data with
the public API, and persists one canonical record per experience. The
fetch mode is run-wide: static HTML by default, a rendered browser when
harvest.use_browser is set.`,
		RunE: runHarvestCommand,
	}
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	mets := metrics.New(registry)

	ds, err := buildDataset(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init dataset: %w", err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			logger.Warn("close dataset", zap.Error(cerr))
		}
	}()

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	notifier, err := buildNotifier(ctx, cfg, runID, logger)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}
	defer func() {
		if cerr := notifier.Close(); cerr != nil {
			logger.Warn("close notifier", zap.Error(cerr))
		}
	}()

	if cfg.Server.Addr != "" {
		go func() {
			if serr := api.Serve(ctx, cfg.Server.Addr, api.NewRouter(registry), logger); serr != nil {
				logger.Error("ops server", zap.Error(serr))
			}
		}()
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	games := apiclient.New(apiclient.Config{
		PlaceDetailsURL: cfg.API.PlaceDetailsURL,
		GamesURL:        cfg.API.GamesURL,
	}, httpClient, logger)

	scrapeCfg := scrape.Config{
		StartURLs:         cfg.SeedURLs(),
		UseAPI:            cfg.Harvest.UseAPI,
		UseBrowser:        cfg.Harvest.UseBrowser,
		CheckPlaceDetails: cfg.Harvest.CheckPlaceDetails,
		SameHostOnly:      cfg.Harvest.SameHostOnly,
		Concurrency:       cfg.Harvest.Concurrency,
		MaxRequests:       cfg.Harvest.MaxRequests,
		UserAgent:         cfg.Harvest.UserAgent,
		RequestTimeout:    cfg.RequestTimeout(),
		NavTimeout:        cfg.NavTimeout(),
		SettleTimeout:     cfg.SettleTimeout(),
		PageQPS:           cfg.Harvest.Browser.PageQPS,
		PlayingSelectors:  cfg.Harvest.PlayingSelectors,
		VisitsSelectors:   cfg.Harvest.VisitsSelectors,
	}

	pipeline := scrape.NewPipeline(scrapeCfg, games, nil, ds, blobs, notifier, mets, nil, logger)

	var runErr error
	if cfg.Harvest.UseBrowser {
		logger.Info("starting harvest", zap.String("mode", "browser"), zap.Int("seeds", len(scrapeCfg.StartURLs)))
		runErr = scrape.NewBrowserRunner(scrapeCfg, pipeline, logger).Run(ctx)
	} else {
		logger.Info("starting harvest", zap.String("mode", "static"), zap.Int("seeds", len(scrapeCfg.StartURLs)))
		runErr = scrape.NewStaticRunner(scrapeCfg, pipeline, logger).Run(ctx)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run harvest: %w", runErr)
	}

	logger.Info("harvest finished")
	return nil
}

func buildDataset(ctx context.Context, cfg config.Config) (dataset.Appender, error) {
	switch cfg.Dataset.Kind {
	case "file":
		return dataset.OpenFile(cfg.Dataset.Path)
	case "postgres":
		return dataset.ConnectPostgres(ctx, cfg.Dataset.DSN)
	case "none":
		return dataset.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown dataset kind %q", cfg.Dataset.Kind)
	}
}

func buildBlobStore(ctx context.Context, cfg config.Config) (storage.Provider, error) {
	switch cfg.Blobs.Kind {
	case "local":
		return local.New(cfg.Blobs.Dir)
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return gcs.New(client, gcs.Config{
			Bucket:      cfg.Blobs.Bucket,
			Prefix:      cfg.Blobs.Prefix,
			ContentType: "application/json",
		})
	case "memory":
		return memory.NewBlobStore(), nil
	case "none":
		return storage.NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown blobs kind %q", cfg.Blobs.Kind)
	}
}

func buildNotifier(ctx context.Context, cfg config.Config, runID string, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.PubSub.ProjectID == "" {
		return notify.NoOp{}, nil
	}
	return notify.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, runID, logger)
}
