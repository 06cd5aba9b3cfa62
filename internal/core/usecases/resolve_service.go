package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/pkg/metrics"
)

const resolveCacheTTL = 300 // seconds

// ResolveService is the read path: four containment lookups composed by the
// location repository, with a short-lived cache in front.
type ResolveService struct {
	locations ports.LocationRepository
	cache     ports.CacheService // optional
}

// NewResolveService creates a ResolveService. cache may be nil.
func NewResolveService(locations ports.LocationRepository, cache ports.CacheService) *ResolveService {
	return &ResolveService{locations: locations, cache: cache}
}

// Resolve returns country/region/city/timezone-offset for a point.
func (s *ResolveService) Resolve(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil, fmt.Errorf("coordinates out of range: lat=%v lon=%v", lat, lon)
	}

	key := cacheKey(lat, lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && len(data) > 0 {
			var info domain.LocationInfo
			if err := json.Unmarshal(data, &info); err == nil {
				metrics.ResolveRequests.WithLabelValues("hit").Inc()
				return &info, nil
			}
		}
	}
	metrics.ResolveRequests.WithLabelValues("miss").Inc()

	info, err := s.locations.ResolvePoint(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	info.TimezoneOffset = timezoneOffset(info.TimezoneID, lon)

	if s.cache != nil {
		if data, err := json.Marshal(info); err == nil {
			if err := s.cache.Set(ctx, key, data, resolveCacheTTL); err != nil {
				slog.Debug("resolve cache set failed", "error", err)
			}
		}
	}
	return info, nil
}

// Status reports dataset row counts and freshness.
func (s *ResolveService) Status(ctx context.Context) (*domain.DatasetStatus, error) {
	return s.locations.Status(ctx)
}

// timezoneOffset prefers the timezone table's IANA zone; while the pipeline
// leaves that table unpopulated, the offset falls back to the solar
// approximation of one hour per 15 degrees of longitude.
func timezoneOffset(tzid string, lon float64) float64 {
	if tzid != "" {
		if loc, err := time.LoadLocation(tzid); err == nil {
			_, secs := time.Now().In(loc).Zone()
			return float64(secs) / 3600
		}
	}
	return math.Round(lon / 15)
}

// cacheKey buckets coordinates to ~110 m so nearby lookups share entries.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("resolve:%.3f:%.3f", lat, lon)
}
