package usecases

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/pkg/config"
	"github.com/lurraldea/geopoint/internal/pkg/featureset"
	"github.com/lurraldea/geopoint/internal/pkg/metrics"
)

// AcquireService turns a source description into one normalized feature
// collection: fallback chain per archive, conversion for shapefile sources,
// and concurrent fan-out/merge when a source is split into regional parts.
type AcquireService struct {
	fetcher     ports.SourceFetcher
	converter   ports.FormatConverter
	parallelism int
}

// NewAcquireService creates an AcquireService.
func NewAcquireService(fetcher ports.SourceFetcher, converter ports.FormatConverter, parallelism int) *AcquireService {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &AcquireService{fetcher: fetcher, converter: converter, parallelism: parallelism}
}

// Acquire fetches, converts and parses all parts of a source. With more than
// one archive the parts run concurrently and merge all-or-nothing: one failed
// part fails the whole source, partial national coverage is never accepted
// silently.
func (s *AcquireService) Acquire(ctx context.Context, src config.SourceConfig) (*geojson.FeatureCollection, error) {
	if len(src.Archives) == 0 {
		return nil, fmt.Errorf("source %s: no archives configured", src.Name)
	}

	if len(src.Archives) == 1 {
		return s.acquireArchive(ctx, src, src.Archives[0])
	}

	results := make([]*geojson.FeatureCollection, len(src.Archives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, part := range src.Archives {
		g.Go(func() error {
			fc, err := s.acquireArchive(gctx, src, part)
			if err != nil {
				return fmt.Errorf("part %s: %w", part.Name, err)
			}
			results[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	merged := featureset.Merge(results...)
	slog.Info("regional parts merged",
		"source", src.Name,
		"parts", len(src.Archives),
		"features", len(merged.Features))
	return merged, nil
}

// acquireArchive walks one archive's fallback URL chain: a network failure or
// a structurally invalid payload logs and advances to the next URL. A single
// attempt per URL; this is a fallback chain, not a retry loop.
func (s *AcquireService) acquireArchive(ctx context.Context, src config.SourceConfig, archive config.ArchiveConfig) (*geojson.FeatureCollection, error) {
	if len(archive.URLs) == 0 {
		return nil, fmt.Errorf("archive %s: no URLs configured", archive.Name)
	}

	var lastErr error
	for _, url := range archive.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		payload, err := s.fetcher.Fetch(ctx, url)
		metrics.FetchDuration.WithLabelValues(src.Name).Observe(time.Since(start).Seconds())
		if err == nil {
			err = validatePayload(src.Format, payload)
		}
		if err != nil {
			metrics.FetchAttempts.WithLabelValues(src.Name, "failure").Inc()
			slog.Warn("source url failed, trying next",
				"source", src.Name, "archive", archive.Name, "url", url, "error", err)
			lastErr = err
			continue
		}
		metrics.FetchAttempts.WithLabelValues(src.Name, "success").Inc()
		slog.Info("source downloaded",
			"source", src.Name, "archive", archive.Name, "url", url,
			"bytes", len(payload), "took", time.Since(start).String())

		return s.toCollection(ctx, src, payload)
	}

	return nil, &SourceExhaustedError{
		Source:   src.Name + "/" + archive.Name,
		Attempts: len(archive.URLs),
		Last:     lastErr,
	}
}

// toCollection converts shapefile payloads through the external tool, then
// parses the interchange GeoJSON. Conversion failure is fatal for the stage.
func (s *AcquireService) toCollection(ctx context.Context, src config.SourceConfig, payload []byte) (*geojson.FeatureCollection, error) {
	if src.Format == "shapefile" {
		converted, err := s.converter.Convert(ctx, payload, src.Filter)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", src.Name, err)
		}
		payload = converted
	}

	fc, err := featureset.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}
	return fc, nil
}

var zipMagic = []byte("PK\x03\x04")

// validatePayload checks structural validity per format before a URL is
// accepted: GeoJSON must parse as a FeatureCollection, shapefile archives
// must at least carry the zip signature.
func validatePayload(format string, payload []byte) error {
	if format == "shapefile" {
		if len(payload) < len(zipMagic) || !bytes.HasPrefix(payload, zipMagic) {
			return fmt.Errorf("payload is not a zip archive")
		}
		return nil
	}
	_, err := featureset.Parse(payload)
	return err
}
