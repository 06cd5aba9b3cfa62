package usecases_test

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/lurraldea/geopoint/internal/core/usecases"
)

func polygonFeature(props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	f.Properties = props
	return f
}

func newImporter(
	countries *mockCountryRepo,
	regions *mockRegionRepo,
	cities *mockCityRepo,
	tz *mockTimezoneRepo,
	allow []string,
) *usecases.ImportService {
	return usecases.NewImportService(countries, regions, cities, tz, allow)
}

func TestImportCountries(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"ISO_A2": "ES", "ISO_A3": "ESP", "NAME": "Spain",
	}))
	// Natural Earth null marker on alpha-2; alpha-3 still present, so kept.
	fc.Append(polygonFeature(map[string]interface{}{
		"ISO_A2": "-99", "ADM0_A3": "FRA", "NAME": "France",
	}))
	// No code at all: skipped.
	fc.Append(polygonFeature(map[string]interface{}{"NAME": "Atlantis"}))
	// No geometry: skipped.
	noGeom := geojson.NewFeature(orb.Point{1, 2})
	noGeom.Properties = geojson.Properties{"ISO_A2": "XX", "NAME": "Pointland"}
	fc.Append(noGeom)

	countries := &mockCountryRepo{}
	svc := newImporter(countries, &mockRegionRepo{}, &mockCityRepo{}, &mockTimezoneRepo{}, nil)

	n, err := svc.ImportCountries(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}
	if countries.replaced[0].Alpha2 != "ES" || countries.replaced[0].Alpha3 != "ESP" {
		t.Errorf("unexpected first row: %+v", countries.replaced[0])
	}
	if countries.replaced[1].Alpha2 != "" || countries.replaced[1].Alpha3 != "FRA" {
		t.Errorf("-99 must not become a code: %+v", countries.replaced[1])
	}
	for _, c := range countries.replaced {
		if !c.HasCountryCode() {
			t.Errorf("imported row without any country code: %+v", c)
		}
		if len(c.Geometry) == 0 {
			t.Errorf("imported row without geometry: %+v", c)
		}
	}
}

func TestImportCountries_DuplicateCodeKeptOnce(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"ISO_A2": "ES", "ISO_A3": "ESP", "NAME": "Spain",
	}))
	fc.Append(polygonFeature(map[string]interface{}{
		"ISO_A2": "ES", "ISO_A3": "ESP", "NAME": "Spain (duplicate feature)",
	}))

	countries := &mockCountryRepo{}
	svc := newImporter(countries, &mockRegionRepo{}, &mockCityRepo{}, &mockTimezoneRepo{}, nil)

	n, err := svc.ImportCountries(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("duplicate code must be written once, got %d rows", n)
	}
	if countries.replaced[0].Name != "Spain" {
		t.Errorf("first occurrence must win, got %+v", countries.replaced[0])
	}
}

func TestImportRegions(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"iso_3166_2": "ES-BI", "name": "Bizkaia", "iso_a2": "ES",
	}))
	// Missing region code: skipped.
	fc.Append(polygonFeature(map[string]interface{}{
		"name": "Nowhere", "iso_a2": "ES",
	}))

	regions := &mockRegionRepo{}
	svc := newImporter(&mockCountryRepo{}, regions, &mockCityRepo{}, &mockTimezoneRepo{}, nil)

	n, err := svc.ImportRegions(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row written, got %d", n)
	}
	if regions.replaced[0].Code != "ES-BI" || regions.replaced[0].CountryAlpha2 != "ES" {
		t.Errorf("unexpected region row: %+v", regions.replaced[0])
	}
}

func TestImportRegions_CodeUniquePerCountry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"iso_3166_2": "ES-BI", "name": "Bizkaia", "iso_a2": "ES",
	}))
	// Same code and country again: only the first row survives.
	fc.Append(polygonFeature(map[string]interface{}{
		"iso_3166_2": "ES-BI", "name": "Bizkaia (duplicate feature)", "iso_a2": "ES",
	}))
	// Same code under a different country is a distinct region.
	fc.Append(polygonFeature(map[string]interface{}{
		"iso_3166_2": "ES-BI", "name": "Elsewhere", "iso_a2": "PT",
	}))

	regions := &mockRegionRepo{}
	svc := newImporter(&mockCountryRepo{}, regions, &mockCityRepo{}, &mockTimezoneRepo{}, nil)

	n, err := svc.ImportRegions(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows (one per country), got %d", n)
	}
	if regions.replaced[0].Name != "Bizkaia" || regions.replaced[1].CountryAlpha2 != "PT" {
		t.Errorf("unexpected surviving rows: %+v", regions.replaced)
	}
}

func TestImportCities_RegionStaysNull(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "3128026", "NAME": "Bilbao", "ISO_A2": "ES",
	}))

	cities := &mockCityRepo{}
	svc := newImporter(&mockCountryRepo{}, &mockRegionRepo{}, cities, &mockTimezoneRepo{}, nil)

	if _, err := svc.ImportCities(context.Background(), fc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cities.replaced[0].RegionCode != nil {
		t.Error("import must never set the region reference; that is backfill's job")
	}
}

func TestImportCities_AllowList(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "1", "NAME": "Bilbao", "ISO_A2": "ES",
	}))
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "2", "NAME": "Lisbon", "ISO_A2": "PT",
	}))
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "3", "NAME": "Paris", "ADM0_A3": "FRA",
	}))

	cities := &mockCityRepo{}
	svc := newImporter(&mockCountryRepo{}, &mockRegionRepo{}, cities, &mockTimezoneRepo{},
		[]string{"es", "FRA"})

	n, err := svc.ImportCities(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected allow-list to keep 2 cities, got %d", n)
	}
	names := []string{cities.replaced[0].Name, cities.replaced[1].Name}
	if names[0] != "Bilbao" || names[1] != "Paris" {
		t.Errorf("unexpected surviving cities: %v", names)
	}
}

func TestImportCities_CodeUniquePerCountry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "3128026", "NAME": "Bilbao", "ISO_A2": "ES",
	}))
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "3128026", "NAME": "Bilbao (duplicate feature)", "ISO_A2": "ES",
	}))
	fc.Append(polygonFeature(map[string]interface{}{
		"GEONAMEID": "3128026", "NAME": "Same id, other country", "ISO_A2": "PT",
	}))

	cities := &mockCityRepo{}
	svc := newImporter(&mockCountryRepo{}, &mockRegionRepo{}, cities, &mockTimezoneRepo{}, nil)

	n, err := svc.ImportCities(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows (one per country), got %d", n)
	}
	if cities.replaced[0].Name != "Bilbao" || cities.replaced[1].CountryAlpha2 != "PT" {
		t.Errorf("unexpected surviving rows: %+v", cities.replaced)
	}
}

func TestImportTimezones_NoOpClearsTable(t *testing.T) {
	tz := &mockTimezoneRepo{}
	svc := newImporter(&mockCountryRepo{}, &mockRegionRepo{}, &mockCityRepo{}, tz, nil)

	n, err := svc.ImportTimezones(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("timezone import is a no-op, got %d rows", n)
	}
	if tz.cleared != 1 {
		t.Errorf("timezones table must still be cleared, cleared=%d", tz.cleared)
	}
}

func TestClearAll(t *testing.T) {
	countries := &mockCountryRepo{}
	regions := &mockRegionRepo{}
	cities := &mockCityRepo{}
	tz := &mockTimezoneRepo{}
	svc := newImporter(countries, regions, cities, tz, nil)

	if err := svc.ClearAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if countries.cleared != 1 || regions.cleared != 1 || cities.cleared != 1 || tz.cleared != 1 {
		t.Errorf("all tables must be cleared: %d %d %d %d",
			countries.cleared, regions.cleared, cities.cleared, tz.cleared)
	}
}
