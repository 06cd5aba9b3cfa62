package ports

import (
	"context"
	"time"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// CountryRepository persists country boundaries.
type CountryRepository interface {
	// Replace performs a wholesale replace of the countries table.
	Replace(ctx context.Context, countries []domain.Country) (int, error)
	Clear(ctx context.Context) error
}

// RegionRepository persists administrative regions.
type RegionRepository interface {
	Replace(ctx context.Context, regions []domain.Region) (int, error)
	Clear(ctx context.Context) error
	// ListNonLatinNames returns up to limit rows whose name contains characters
	// outside the basic Latin letter/digit/space/hyphen/period set.
	ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error)
	// UpdateNames writes one batch of name updates inside a single transaction.
	UpdateNames(ctx context.Context, updates []domain.NameUpdate) error
}

// CityRepository persists city polygons.
type CityRepository interface {
	Replace(ctx context.Context, cities []domain.City) (int, error)
	Clear(ctx context.Context) error
	// BackfillRegions assigns region codes to cities with a null region whose
	// centroid falls inside a region sharing a country code. Returns the number
	// of cities updated.
	BackfillRegions(ctx context.Context) (int64, error)
	ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error)
	UpdateNames(ctx context.Context, updates []domain.NameUpdate) error
}

// TimezoneRepository persists timezone polygons. The pipeline clears the table
// but does not currently load it.
type TimezoneRepository interface {
	Clear(ctx context.Context) error
}

// LastUpdateRepository tracks pipeline completion time.
type LastUpdateRepository interface {
	// Touch sets the completion timestamp; written only after all stages succeed.
	Touch(ctx context.Context, at time.Time) error
	Get(ctx context.Context) (*time.Time, error)
}

// LocationRepository is the read-path spatial lookup.
type LocationRepository interface {
	// ResolvePoint runs the four containment queries for a point.
	ResolvePoint(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error)
	Status(ctx context.Context) (*domain.DatasetStatus, error)
}

// PipelineLock is the cluster-wide mutual-exclusion gate. The lock is
// session-scoped: a crashed holder drops it automatically.
type PipelineLock interface {
	// Acquire waits up to maxWait for the lock. Returns false without error
	// when another run holds it.
	Acquire(ctx context.Context, maxWait time.Duration) (bool, error)
	Release(ctx context.Context) error
}
