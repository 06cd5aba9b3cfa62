package domain

import (
	"encoding/json"
	"time"
)

// Country is a national territory with its ISO codes and boundary.
type Country struct {
	ID       int64           `json:"id"`
	Alpha2   string          `json:"alpha2,omitempty"`
	Alpha3   string          `json:"alpha3,omitempty"`
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry,omitempty"` // GeoJSON MultiPolygon
}

// HasCountryCode reports whether at least one ISO code field is set.
func (c Country) HasCountryCode() bool {
	return c.Alpha2 != "" || c.Alpha3 != ""
}

// Region is a first-level administrative division (state, province, oblast).
// Code is unique within its owning country, not globally.
type Region struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	CountryAlpha2 string          `json:"country_alpha2,omitempty"`
	CountryAlpha3 string          `json:"country_alpha3,omitempty"`
	Geometry      json.RawMessage `json:"geometry,omitempty"`
}

func (r Region) HasCountryCode() bool {
	return r.CountryAlpha2 != "" || r.CountryAlpha3 != ""
}

// City is a settlement polygon. RegionCode is nullable and is populated only
// by the post-processing backfill, never by the primary import.
type City struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	CountryAlpha2 string          `json:"country_alpha2,omitempty"`
	CountryAlpha3 string          `json:"country_alpha3,omitempty"`
	RegionCode    *string         `json:"region_code,omitempty"`
	Geometry      json.RawMessage `json:"geometry,omitempty"`
}

func (c City) HasCountryCode() bool {
	return c.CountryAlpha2 != "" || c.CountryAlpha3 != ""
}

// Timezone is an IANA timezone polygon. The table exists for the read path
// but the pipeline does not currently populate it.
type Timezone struct {
	ID       int64           `json:"id"`
	TZID     string          `json:"tzid"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// LocationInfo is the read-path resolution result for a point.
type LocationInfo struct {
	Country        string  `json:"country,omitempty"`
	CountryAlpha2  string  `json:"country_alpha2,omitempty"`
	Region         string  `json:"region,omitempty"`
	City           string  `json:"city,omitempty"`
	TimezoneID     string  `json:"timezone_id,omitempty"`
	TimezoneOffset float64 `json:"timezone_offset"` // hours east of UTC
}

// NameRow is a (row id, display name) pair selected for transliteration.
type NameRow struct {
	ID   int64
	Name string
}

// NameUpdate carries a transliterated name to write back.
type NameUpdate struct {
	ID   int64
	Name string
}

// DatasetStatus summarizes the published dataset for the status endpoint.
type DatasetStatus struct {
	Countries  int        `json:"countries"`
	Regions    int        `json:"regions"`
	Cities     int        `json:"cities"`
	Timezones  int        `json:"timezones"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

// DatasetUpdatedEvent is published after a successful pipeline run.
type DatasetUpdatedEvent struct {
	Countries int       `json:"countries"`
	Regions   int       `json:"regions"`
	Cities    int       `json:"cities"`
	UpdatedAt time.Time `json:"updated_at"`
}
