package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/pkg/config"
	"github.com/lurraldea/geopoint/internal/pkg/metrics"
)

// PipelineService sequences a full dataset rebuild under the cluster-wide
// lock: clear → countries → regions → cities → timezones → post-processing →
// last-update. Any fatal stage failure aborts the run; LastUpdate is written
// only after everything the consumers depend on has succeeded.
type PipelineService struct {
	cfg config.PipelineConfig

	lock        ports.PipelineLock
	acquirer    *AcquireService
	importer    *ImportService
	postProcess *PostProcessService
	lastUpdate  ports.LastUpdateRepository
	publisher   ports.EventPublisher // optional
}

// NewPipelineService creates a PipelineService. publisher may be nil.
func NewPipelineService(
	cfg config.PipelineConfig,
	lock ports.PipelineLock,
	acquirer *AcquireService,
	importer *ImportService,
	postProcess *PostProcessService,
	lastUpdate ports.LastUpdateRepository,
	publisher ports.EventPublisher,
) *PipelineService {
	return &PipelineService{
		cfg:         cfg,
		lock:        lock,
		acquirer:    acquirer,
		importer:    importer,
		postProcess: postProcess,
		lastUpdate:  lastUpdate,
		publisher:   publisher,
	}
}

// Run executes one pipeline generation. Returns ErrAlreadyRunning when
// another node holds the lock; callers treat that as a clean exit.
func (s *PipelineService) Run(ctx context.Context) error {
	got, err := s.lock.Acquire(ctx, time.Duration(s.cfg.LockWait)*time.Second)
	if err != nil {
		return fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !got {
		slog.Warn("pipeline lock held by another run, exiting without touching data")
		return ErrAlreadyRunning
	}
	defer func() {
		// Release on every exit path. A crashed process drops the
		// session-scoped lock on its own.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.lock.Release(releaseCtx); err != nil {
			slog.Error("pipeline lock release failed", "error", err)
		}
	}()

	runStart := time.Now()
	var counts struct{ countries, regions, cities int }

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"clear", s.importer.ClearAll},
		{"import_countries", func(ctx context.Context) error {
			n, err := s.importEntity(ctx, s.cfg.Countries, s.importer.ImportCountries)
			counts.countries = n
			return err
		}},
		{"import_regions", func(ctx context.Context) error {
			n, err := s.importEntity(ctx, s.cfg.Regions, s.importer.ImportRegions)
			counts.regions = n
			return err
		}},
		{"import_cities", func(ctx context.Context) error {
			n, err := s.importEntity(ctx, s.cfg.Cities, s.importer.ImportCities)
			counts.cities = n
			return err
		}},
		{"import_timezones", func(ctx context.Context) error {
			_, err := s.importer.ImportTimezones(ctx)
			return err
		}},
		{"post_process", func(ctx context.Context) error {
			// Post-processing absorbs its own failures.
			s.postProcess.Run(ctx)
			return nil
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runStage(ctx, stage.name, stage.fn); err != nil {
			return err
		}
	}

	now := time.Now()
	if err := s.runStage(ctx, "last_update", func(ctx context.Context) error {
		return s.lastUpdate.Touch(ctx, now)
	}); err != nil {
		return err
	}

	if s.publisher != nil {
		ev := &domain.DatasetUpdatedEvent{
			Countries: counts.countries,
			Regions:   counts.regions,
			Cities:    counts.cities,
			UpdatedAt: now,
		}
		if err := s.publisher.PublishDatasetUpdated(ctx, ev); err != nil {
			slog.Warn("dataset-updated event not published", "error", err)
		}
	}

	slog.Info("pipeline run complete",
		"countries", counts.countries,
		"regions", counts.regions,
		"cities", counts.cities,
		"took", time.Since(runStart).String())
	return nil
}

// importEntity runs one acquire→import stage.
func (s *PipelineService) importEntity(
	ctx context.Context,
	src config.SourceConfig,
	importFn func(context.Context, *geojson.FeatureCollection) (int, error),
) (int, error) {
	fc, err := s.acquirer.Acquire(ctx, src)
	if err != nil {
		return 0, err
	}
	return importFn(ctx, fc)
}

// runStage measures and logs one stage, recording failures.
func (s *PipelineService) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	slog.Info("stage starting", "stage", name)

	err := fn(ctx)
	took := time.Since(start)
	metrics.StageDuration.WithLabelValues(name).Observe(took.Seconds())

	if err != nil {
		metrics.StageFailures.WithLabelValues(name).Inc()
		slog.Error("stage failed", "stage", name, "took", took.String(), "error", err)
		return fmt.Errorf("stage %s: %w", name, err)
	}
	slog.Info("stage complete", "stage", name, "took", took.String())
	return nil
}
