package usecases_test

import (
	"context"
	"testing"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/usecases"
)

func TestResolve_Success(t *testing.T) {
	repo := &mockLocationRepo{
		resolveFn: func(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
			return &domain.LocationInfo{
				Country:       "Spain",
				CountryAlpha2: "ES",
				Region:        "Bizkaia",
				City:          "Bilbao",
			}, nil
		},
	}

	svc := usecases.NewResolveService(repo, nil)
	info, err := svc.Resolve(context.Background(), 43.263, -2.935)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Country != "Spain" || info.City != "Bilbao" {
		t.Errorf("unexpected result: %+v", info)
	}
}

func TestResolve_LongitudeFallbackOffset(t *testing.T) {
	repo := &mockLocationRepo{
		resolveFn: func(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
			// Timezone table unpopulated: no tzid.
			return &domain.LocationInfo{}, nil
		},
	}

	svc := usecases.NewResolveService(repo, nil)

	cases := []struct {
		lon  float64
		want float64
	}{
		{0, 0},
		{-2.935, 0},
		{37.62, 3},   // Moscow longitude
		{-74.0, -5},  // New York longitude
		{151.2, 10},  // Sydney longitude
		{-179.9, -12},
	}
	for _, tc := range cases {
		info, err := svc.Resolve(context.Background(), 10, tc.lon)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.TimezoneOffset != tc.want {
			t.Errorf("lon=%v: offset = %v, want %v", tc.lon, info.TimezoneOffset, tc.want)
		}
	}
}

func TestResolve_RejectsOutOfRange(t *testing.T) {
	svc := usecases.NewResolveService(&mockLocationRepo{}, nil)
	if _, err := svc.Resolve(context.Background(), 91, 0); err == nil {
		t.Error("latitude 91 must be rejected")
	}
	if _, err := svc.Resolve(context.Background(), 0, 181); err == nil {
		t.Error("longitude 181 must be rejected")
	}
}

func TestResolve_CacheHitSkipsRepository(t *testing.T) {
	repo := &mockLocationRepo{
		resolveFn: func(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
			return &domain.LocationInfo{Country: "Spain"}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewResolveService(repo, cache)

	if _, err := svc.Resolve(context.Background(), 43.263, -2.935); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), 43.263, -2.935); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("second lookup must come from cache, repo calls = %d", repo.calls)
	}
}
