package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lurraldea/geopoint/internal/adapters/fetchhttp"
	"github.com/lurraldea/geopoint/internal/adapters/gdal"
	natsadapter "github.com/lurraldea/geopoint/internal/adapters/nats"
	"github.com/lurraldea/geopoint/internal/adapters/postgres"
	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/core/usecases"
	"github.com/lurraldea/geopoint/internal/pkg/config"
	"github.com/lurraldea/geopoint/internal/pkg/logging"
	"github.com/lurraldea/geopoint/internal/pkg/telemetry"
	"github.com/lurraldea/geopoint/internal/pkg/translit"
)

func main() {
	cfg, err := config.Load("geopoint-pipeline")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The dataset-updated event is best effort. A run without a broker
	// still publishes a perfectly good dataset.
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, dataset event will not be published", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	countryRepo := postgres.NewCountryRepo(db)
	regionRepo := postgres.NewRegionRepo(db)
	cityRepo := postgres.NewCityRepo(db)
	tzRepo := postgres.NewTimezoneRepo(db)
	lastUpdateRepo := postgres.NewLastUpdateRepo(db)
	lock := postgres.NewAdvisoryLock(db)

	fetcher := fetchhttp.New(time.Duration(cfg.Pipeline.HTTPTimeout) * time.Second)
	converter := gdal.New(cfg.Pipeline.Ogr2ogrPath, cfg.Pipeline.WorkDir)

	acquirer := usecases.NewAcquireService(fetcher, converter, cfg.Pipeline.Parallelism)
	importer := usecases.NewImportService(countryRepo, regionRepo, cityRepo, tzRepo, cfg.Pipeline.AllowCountries)
	post := usecases.NewPostProcessService(regionRepo, cityRepo, translit.Latin{},
		cfg.Pipeline.TranslitMaxRows, cfg.Pipeline.TranslitBatchSize)

	pipeline := usecases.NewPipelineService(cfg.Pipeline, lock, acquirer, importer, post, lastUpdateRepo, publisher)

	if err := pipeline.Run(ctx); err != nil {
		if errors.Is(err, usecases.ErrAlreadyRunning) {
			// Another node is rebuilding the dataset. Nothing to do here.
			return
		}
		slog.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}
}
