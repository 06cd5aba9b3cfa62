package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// --- Mock fetcher / converter ---

type mockFetcher struct {
	mu      sync.Mutex
	fetchFn func(ctx context.Context, url string) ([]byte, error)
	urls    []string
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, url)
	}
	return nil, fmt.Errorf("no fetch handler for %s", url)
}

type mockConverter struct {
	convertFn func(ctx context.Context, archive []byte, filter string) ([]byte, error)
	calls     int
	filters   []string
}

func (m *mockConverter) Convert(ctx context.Context, archive []byte, filter string) ([]byte, error) {
	m.calls++
	m.filters = append(m.filters, filter)
	if m.convertFn != nil {
		return m.convertFn(ctx, archive, filter)
	}
	return nil, fmt.Errorf("no convert handler")
}

// --- Mock repositories ---

type mockCountryRepo struct {
	replaced   []domain.Country
	cleared    int
	replaceErr error
}

func (m *mockCountryRepo) Replace(ctx context.Context, countries []domain.Country) (int, error) {
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.replaced = countries
	return len(countries), nil
}

func (m *mockCountryRepo) Clear(ctx context.Context) error {
	m.cleared++
	return nil
}

type mockRegionRepo struct {
	replaced    []domain.Region
	cleared     int
	nonLatin    []domain.NameRow
	listErr     error
	updateFn    func(updates []domain.NameUpdate) error
	updateCalls [][]domain.NameUpdate
}

func (m *mockRegionRepo) Replace(ctx context.Context, regions []domain.Region) (int, error) {
	m.replaced = regions
	return len(regions), nil
}

func (m *mockRegionRepo) Clear(ctx context.Context) error {
	m.cleared++
	return nil
}

func (m *mockRegionRepo) ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit < len(m.nonLatin) {
		return m.nonLatin[:limit], nil
	}
	return m.nonLatin, nil
}

func (m *mockRegionRepo) UpdateNames(ctx context.Context, updates []domain.NameUpdate) error {
	m.updateCalls = append(m.updateCalls, updates)
	if m.updateFn != nil {
		return m.updateFn(updates)
	}
	return nil
}

type mockCityRepo struct {
	replaced    []domain.City
	cleared     int
	backfillN   int64
	backfillErr error
	backfilled  int
	nonLatin    []domain.NameRow
	updateFn    func(updates []domain.NameUpdate) error
	updateCalls [][]domain.NameUpdate
}

func (m *mockCityRepo) Replace(ctx context.Context, cities []domain.City) (int, error) {
	m.replaced = cities
	return len(cities), nil
}

func (m *mockCityRepo) Clear(ctx context.Context) error {
	m.cleared++
	return nil
}

func (m *mockCityRepo) BackfillRegions(ctx context.Context) (int64, error) {
	m.backfilled++
	if m.backfillErr != nil {
		return 0, m.backfillErr
	}
	return m.backfillN, nil
}

func (m *mockCityRepo) ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error) {
	if limit < len(m.nonLatin) {
		return m.nonLatin[:limit], nil
	}
	return m.nonLatin, nil
}

func (m *mockCityRepo) UpdateNames(ctx context.Context, updates []domain.NameUpdate) error {
	m.updateCalls = append(m.updateCalls, updates)
	if m.updateFn != nil {
		return m.updateFn(updates)
	}
	return nil
}

type mockTimezoneRepo struct {
	cleared int
}

func (m *mockTimezoneRepo) Clear(ctx context.Context) error {
	m.cleared++
	return nil
}

type mockLastUpdateRepo struct {
	touched   int
	touchedAt time.Time
	touchErr  error
}

func (m *mockLastUpdateRepo) Touch(ctx context.Context, at time.Time) error {
	if m.touchErr != nil {
		return m.touchErr
	}
	m.touched++
	m.touchedAt = at
	return nil
}

func (m *mockLastUpdateRepo) Get(ctx context.Context) (*time.Time, error) {
	if m.touched == 0 {
		return nil, nil
	}
	return &m.touchedAt, nil
}

type mockLock struct {
	available  bool
	acquireErr error
	acquired   int
	released   int
}

func (m *mockLock) Acquire(ctx context.Context, maxWait time.Duration) (bool, error) {
	if m.acquireErr != nil {
		return false, m.acquireErr
	}
	m.acquired++
	return m.available, nil
}

func (m *mockLock) Release(ctx context.Context) error {
	m.released++
	return nil
}

type mockPublisher struct {
	events []*domain.DatasetUpdatedEvent
}

func (m *mockPublisher) PublishDatasetUpdated(ctx context.Context, ev *domain.DatasetUpdatedEvent) error {
	m.events = append(m.events, ev)
	return nil
}

type mockLocationRepo struct {
	resolveFn func(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error)
	statusFn  func(ctx context.Context) (*domain.DatasetStatus, error)
	calls     int
}

func (m *mockLocationRepo) ResolvePoint(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, lat, lon)
	}
	return &domain.LocationInfo{}, nil
}

func (m *mockLocationRepo) Status(ctx context.Context) (*domain.DatasetStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx)
	}
	return &domain.DatasetStatus{}, nil
}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type fixedTransliterator struct {
	fn func(string) string
}

func (f fixedTransliterator) Transliterate(text string) string {
	if f.fn != nil {
		return f.fn(text)
	}
	return text
}
