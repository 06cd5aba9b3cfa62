package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/ports"
	"github.com/lurraldea/geopoint/internal/pkg/featureset"
	"github.com/lurraldea/geopoint/internal/pkg/metrics"
)

// ImportService performs the wholesale replace of one entity table per call.
// A malformed individual feature is skipped and logged, never fatal; missing
// output as a whole is the acquire stage's problem, not this one's.
type ImportService struct {
	countries ports.CountryRepository
	regions   ports.RegionRepository
	cities    ports.CityRepository
	timezones ports.TimezoneRepository

	// allow restricts city ingestion scope; keys are upper-case ISO codes
	// (alpha-2 or alpha-3). Empty means no restriction.
	allow map[string]bool
}

// NewImportService creates an ImportService. allowCountries may be nil.
func NewImportService(
	countries ports.CountryRepository,
	regions ports.RegionRepository,
	cities ports.CityRepository,
	timezones ports.TimezoneRepository,
	allowCountries []string,
) *ImportService {
	var allow map[string]bool
	if len(allowCountries) > 0 {
		allow = make(map[string]bool, len(allowCountries))
		for _, code := range allowCountries {
			allow[strings.ToUpper(strings.TrimSpace(code))] = true
		}
	}
	return &ImportService{
		countries: countries,
		regions:   regions,
		cities:    cities,
		timezones: timezones,
		allow:     allow,
	}
}

// ImportCountries replaces the countries table from a feature collection.
// Returns the number of rows written.
func (s *ImportService) ImportCountries(ctx context.Context, fc *geojson.FeatureCollection) (int, error) {
	var rows []domain.Country
	skipped := 0
	seenA2 := make(map[string]bool)
	seenA3 := make(map[string]bool)

	for _, f := range fc.Features {
		c := domain.Country{
			Alpha2: strings.ToUpper(featureset.StringProp(f, "ISO_A2", "ISO_A2_EH", "WB_A2")),
			Alpha3: strings.ToUpper(featureset.StringProp(f, "ISO_A3", "ISO_A3_EH", "ADM0_A3")),
			Name:   featureset.StringProp(f, "NAME_EN", "NAME", "ADMIN"),
		}
		geom, ok := normalizedGeometry(f)
		if !ok || !c.HasCountryCode() || c.Name == "" {
			skipped++
			slog.Warn("skipping invalid country feature",
				"alpha2", c.Alpha2, "alpha3", c.Alpha3, "name", c.Name, "has_geometry", ok)
			continue
		}
		// Each ISO code may appear at most once; the first feature wins.
		if (c.Alpha2 != "" && seenA2[c.Alpha2]) || (c.Alpha3 != "" && seenA3[c.Alpha3]) {
			skipped++
			slog.Warn("skipping duplicate country feature",
				"alpha2", c.Alpha2, "alpha3", c.Alpha3, "name", c.Name)
			continue
		}
		if c.Alpha2 != "" {
			seenA2[c.Alpha2] = true
		}
		if c.Alpha3 != "" {
			seenA3[c.Alpha3] = true
		}
		c.Geometry = geom
		rows = append(rows, c)
	}

	recordImport("countries", len(rows), skipped)
	written, err := s.countries.Replace(ctx, rows)
	if err != nil {
		return written, fmt.Errorf("replace countries: %w", err)
	}
	return written, nil
}

// ImportRegions replaces the regions table from a feature collection.
func (s *ImportService) ImportRegions(ctx context.Context, fc *geojson.FeatureCollection) (int, error) {
	var rows []domain.Region
	skipped := 0
	seen := make(map[string]bool)

	for _, f := range fc.Features {
		r := domain.Region{
			Code:          featureset.StringProp(f, "iso_3166_2", "adm1_code", "code_hasc"),
			Name:          featureset.StringProp(f, "name_en", "name", "gn_name"),
			CountryAlpha2: strings.ToUpper(featureset.StringProp(f, "iso_a2", "ISO_A2")),
			CountryAlpha3: strings.ToUpper(featureset.StringProp(f, "adm0_a3", "sov_a3", "ISO_A3")),
		}
		geom, ok := normalizedGeometry(f)
		if !ok || r.Code == "" || r.Name == "" || !r.HasCountryCode() {
			skipped++
			slog.Warn("skipping invalid region feature",
				"code", r.Code, "name", r.Name,
				"alpha2", r.CountryAlpha2, "alpha3", r.CountryAlpha3, "has_geometry", ok)
			continue
		}
		// The region code is unique within its country; the first feature wins.
		key := r.Code + "|" + r.CountryAlpha2 + "|" + r.CountryAlpha3
		if seen[key] {
			skipped++
			slog.Warn("skipping duplicate region feature",
				"code", r.Code, "alpha2", r.CountryAlpha2, "alpha3", r.CountryAlpha3)
			continue
		}
		seen[key] = true
		r.Geometry = geom
		rows = append(rows, r)
	}

	recordImport("regions", len(rows), skipped)
	written, err := s.regions.Replace(ctx, rows)
	if err != nil {
		return written, fmt.Errorf("replace regions: %w", err)
	}
	return written, nil
}

// ImportCities replaces the cities table from a feature collection. The
// region reference stays null here; only post-processing fills it, since the
// import sources carry no region linkage.
func (s *ImportService) ImportCities(ctx context.Context, fc *geojson.FeatureCollection) (int, error) {
	var rows []domain.City
	skipped := 0
	filtered := 0
	seen := make(map[string]bool)

	for _, f := range fc.Features {
		c := domain.City{
			Code:          featureset.StringProp(f, "GEONAMEID", "GN_ID", "NE_ID"),
			Name:          featureset.StringProp(f, "NAME_EN", "NAME", "NAMEASCII"),
			CountryAlpha2: strings.ToUpper(featureset.StringProp(f, "ISO_A2", "iso_a2")),
			CountryAlpha3: strings.ToUpper(featureset.StringProp(f, "ADM0_A3", "SOV_A3")),
		}
		geom, ok := normalizedGeometry(f)
		if !ok || c.Code == "" || c.Name == "" || !c.HasCountryCode() {
			skipped++
			slog.Warn("skipping invalid city feature",
				"code", c.Code, "name", c.Name,
				"alpha2", c.CountryAlpha2, "alpha3", c.CountryAlpha3, "has_geometry", ok)
			continue
		}
		if s.allow != nil && !s.allow[c.CountryAlpha2] && !s.allow[c.CountryAlpha3] {
			filtered++
			continue
		}
		// The city code is unique within its country; the first feature wins.
		key := c.Code + "|" + c.CountryAlpha2 + "|" + c.CountryAlpha3
		if seen[key] {
			skipped++
			slog.Warn("skipping duplicate city feature",
				"code", c.Code, "alpha2", c.CountryAlpha2, "alpha3", c.CountryAlpha3)
			continue
		}
		seen[key] = true
		c.Geometry = geom
		rows = append(rows, c)
	}

	if filtered > 0 {
		slog.Info("cities outside allow-list ignored", "count", filtered)
	}
	recordImport("cities", len(rows), skipped)
	written, err := s.cities.Replace(ctx, rows)
	if err != nil {
		return written, fmt.Errorf("replace cities: %w", err)
	}
	return written, nil
}

// ImportTimezones is a documented no-op: the stage exists in the orchestration
// sequence and clears the table, but no source is wired yet. The read path
// falls back to a longitude-derived offset meanwhile.
func (s *ImportService) ImportTimezones(ctx context.Context) (int, error) {
	if err := s.timezones.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear timezones: %w", err)
	}
	return 0, nil
}

// ClearAll empties every entity table before a run rebuilds them.
func (s *ImportService) ClearAll(ctx context.Context) error {
	if err := s.countries.Clear(ctx); err != nil {
		return err
	}
	if err := s.regions.Clear(ctx); err != nil {
		return err
	}
	if err := s.cities.Clear(ctx); err != nil {
		return err
	}
	return s.timezones.Clear(ctx)
}

// normalizedGeometry wraps single polygons into multi-polygons and encodes
// the result as a GeoJSON geometry for the store.
func normalizedGeometry(f *geojson.Feature) ([]byte, bool) {
	mp, ok := featureset.MultiPolygon(f)
	if !ok {
		return nil, false
	}
	data, err := featureset.GeometryJSON(mp)
	if err != nil {
		return nil, false
	}
	return data, true
}

func recordImport(entity string, kept, skipped int) {
	metrics.FeaturesImported.WithLabelValues(entity).Add(float64(kept))
	metrics.FeaturesSkipped.WithLabelValues(entity).Add(float64(skipped))
	slog.Info("features validated", "entity", entity, "kept", kept, "skipped", skipped)
}
