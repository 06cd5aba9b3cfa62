package ports

import (
	"context"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// SourceFetcher downloads a single URL. Fallback ordering across URLs is
// policy and lives in the acquire service, not here.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FormatConverter turns a shapefile archive into GeoJSON, applying an
// attribute filter expression evaluated by the external tool.
type FormatConverter interface {
	Convert(ctx context.Context, archive []byte, filter string) ([]byte, error)
}

// Transliterator converts non-Latin text to its closest Latin form.
// An empty result means the conversion failed for that input.
type Transliterator interface {
	Transliterate(text string) string
}

// EventPublisher announces dataset lifecycle events.
type EventPublisher interface {
	PublishDatasetUpdated(ctx context.Context, ev *domain.DatasetUpdatedEvent) error
}

// CacheService is a byte-oriented cache with TTLs.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
