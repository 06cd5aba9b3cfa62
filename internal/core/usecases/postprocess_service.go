package usecases

import (
	"context"
	"log/slog"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/pkg/metrics"
)

// PostProcessService repairs cross-entity relationships and non-Latin naming
// after the bulk imports: region backfill by centroid containment, then
// transliteration of region and city names. Each pass is independently
// non-fatal; unmatched cities simply keep a null region.
type PostProcessService struct {
	regions ports.RegionRepository
	cities  ports.CityRepository
	tr      ports.Transliterator

	maxRows   int
	batchSize int
}

// NewPostProcessService creates a PostProcessService.
func NewPostProcessService(
	regions ports.RegionRepository,
	cities ports.CityRepository,
	tr ports.Transliterator,
	maxRows, batchSize int,
) *PostProcessService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &PostProcessService{
		regions:   regions,
		cities:    cities,
		tr:        tr,
		maxRows:   maxRows,
		batchSize: batchSize,
	}
}

// Run executes both passes. Errors are absorbed and logged here; the
// orchestrator still writes LastUpdate afterwards.
func (s *PostProcessService) Run(ctx context.Context) {
	s.backfillRegions(ctx)
	s.transliterate(ctx, "regions", s.regions)
	s.transliterate(ctx, "cities", s.cities)
}

func (s *PostProcessService) backfillRegions(ctx context.Context) {
	assigned, err := s.cities.BackfillRegions(ctx)
	if err != nil {
		slog.Error("region backfill failed, cities keep null regions", "error", err)
		return
	}
	metrics.RegionsBackfilled.Add(float64(assigned))
	slog.Info("region backfill complete", "cities_assigned", assigned)
}

// nameUpdater is the slice of the repositories the transliteration pass needs.
type nameUpdater interface {
	ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error)
	UpdateNames(ctx context.Context, updates []domain.NameUpdate) error
}

// transliterate selects non-Latin names (capped) and writes Latin forms back
// in bounded batches, one transaction per batch. A failed batch rolls back
// alone; earlier batches stay committed and later batches still run.
func (s *PostProcessService) transliterate(ctx context.Context, entity string, repo nameUpdater) {
	rows, err := repo.ListNonLatinNames(ctx, s.maxRows)
	if err != nil {
		slog.Error("transliteration selection failed", "entity", entity, "error", err)
		return
	}
	if len(rows) == 0 {
		return
	}

	var updates []domain.NameUpdate
	failures := 0
	for _, row := range rows {
		latin := s.tr.Transliterate(row.Name)
		if latin == "" {
			// Keep the original name rather than blank it out.
			failures++
			slog.Warn("transliteration returned empty, keeping original",
				"entity", entity, "id", row.ID, "name", row.Name)
			continue
		}
		updates = append(updates, domain.NameUpdate{ID: row.ID, Name: latin})
	}
	if failures > 0 {
		metrics.TranslitFailures.WithLabelValues(entity).Add(float64(failures))
	}

	applied := 0
	failedBatches := 0
	for start := 0; start < len(updates); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			slog.Warn("transliteration cancelled between batches", "entity", entity, "error", err)
			return
		}
		end := start + s.batchSize
		if end > len(updates) {
			end = len(updates)
		}
		batch := updates[start:end]
		if err := repo.UpdateNames(ctx, batch); err != nil {
			failedBatches++
			slog.Error("transliteration batch failed, rolled back",
				"entity", entity, "batch_size", len(batch), "error", err)
			continue
		}
		applied += len(batch)
	}

	slog.Info("transliteration complete",
		"entity", entity,
		"selected", len(rows),
		"applied", applied,
		"empty_results", failures,
		"failed_batches", failedBatches)
}
