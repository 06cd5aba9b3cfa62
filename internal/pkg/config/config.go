package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// PipelineConfig drives the dataset ingestion run.
type PipelineConfig struct {
	// LockWait bounds advisory-lock acquisition, in seconds.
	LockWait int `mapstructure:"lock_wait"`
	// HTTPTimeout applies per download attempt, in seconds.
	HTTPTimeout int `mapstructure:"http_timeout"`
	// Parallelism bounds concurrent regional fan-out branches.
	Parallelism int `mapstructure:"parallelism"`
	// Ogr2ogrPath locates the external conversion tool.
	Ogr2ogrPath string `mapstructure:"ogr2ogr_path"`
	// WorkDir holds temporary conversion inputs/outputs.
	WorkDir string `mapstructure:"work_dir"`
	// TranslitMaxRows caps one transliteration selection.
	TranslitMaxRows int `mapstructure:"translit_max_rows"`
	// TranslitBatchSize bounds one write-back transaction.
	TranslitBatchSize int `mapstructure:"translit_batch_size"`
	// AllowCountries restricts city ingestion to the listed ISO codes
	// (alpha-2 or alpha-3). Empty means no restriction.
	AllowCountries []string `mapstructure:"allow_countries"`

	Countries SourceConfig `mapstructure:"countries"`
	Regions   SourceConfig `mapstructure:"regions"`
	Cities    SourceConfig `mapstructure:"cities"`
}

// SourceConfig describes one entity type's upstream dataset.
type SourceConfig struct {
	Name string `mapstructure:"name"`
	// Format is "geojson" or "shapefile". Shapefile archives go through the
	// external converter before import.
	Format string `mapstructure:"format"`
	// Filter is an attribute predicate evaluated by the conversion tool.
	Filter string `mapstructure:"filter"`
	// Archives lists one or more downloadable parts. More than one part means
	// the source is split regionally and is fetched with concurrent fan-out.
	Archives []ArchiveConfig `mapstructure:"archives"`
}

// ArchiveConfig is one downloadable part with its fallback URL chain.
type ArchiveConfig struct {
	Name string   `mapstructure:"name"`
	URLs []string `mapstructure:"urls"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "geopoint")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "geopoint")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	v.SetDefault("pipeline.lock_wait", 30)
	v.SetDefault("pipeline.http_timeout", 120)
	v.SetDefault("pipeline.parallelism", 4)
	v.SetDefault("pipeline.ogr2ogr_path", "ogr2ogr")
	v.SetDefault("pipeline.work_dir", "")
	v.SetDefault("pipeline.translit_max_rows", 5000)
	v.SetDefault("pipeline.translit_batch_size", 200)
	v.SetDefault("pipeline.countries.name", "countries")
	v.SetDefault("pipeline.countries.format", "geojson")
	v.SetDefault("pipeline.regions.name", "regions")
	v.SetDefault("pipeline.regions.format", "shapefile")
	v.SetDefault("pipeline.cities.name", "cities")
	v.SetDefault("pipeline.cities.format", "shapefile")
	// Keep settlements that are real urban areas or large enough to matter.
	v.SetDefault("pipeline.cities.filter", "FEATURECLA IN ('Admin-0 capital','Admin-1 capital','Populated place') OR POP_MAX >= 50000")

	// Natural Earth mirrors, primary first. Each archive is one logical part;
	// within a part the URLs form a fallback chain.
	v.SetDefault("pipeline.countries.archives", []map[string]interface{}{{
		"name": "world",
		"urls": []string{
			"https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_10m_admin_0_countries.geojson",
			"https://cdn.jsdelivr.net/gh/nvkelso/natural-earth-vector@master/geojson/ne_10m_admin_0_countries.geojson",
		},
	}})
	v.SetDefault("pipeline.regions.archives", []map[string]interface{}{{
		"name": "world",
		"urls": []string{
			"https://naciscdn.org/naturalearth/10m/cultural/ne_10m_admin_1_states_provinces.zip",
			"https://naturalearth.s3.amazonaws.com/10m_cultural/ne_10m_admin_1_states_provinces.zip",
		},
	}})
	v.SetDefault("pipeline.cities.archives", []map[string]interface{}{{
		"name": "world",
		"urls": []string{
			"https://naciscdn.org/naturalearth/10m/cultural/ne_10m_populated_places.zip",
			"https://naturalearth.s3.amazonaws.com/10m_cultural/ne_10m_populated_places.zip",
		},
	}})

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOPOINT_DATABASE_HOST → database.host
	v.SetEnvPrefix("GEOPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Pipeline.LockWait <= 0 {
		errs = append(errs, "pipeline.lock_wait must be positive")
	}
	if c.Pipeline.HTTPTimeout <= 0 {
		errs = append(errs, "pipeline.http_timeout must be positive")
	}
	if c.Pipeline.Parallelism <= 0 {
		errs = append(errs, "pipeline.parallelism must be positive")
	}
	if c.Pipeline.TranslitMaxRows <= 0 {
		errs = append(errs, "pipeline.translit_max_rows must be positive")
	}
	if c.Pipeline.TranslitBatchSize <= 0 {
		errs = append(errs, "pipeline.translit_batch_size must be positive")
	}
	for _, src := range []SourceConfig{c.Pipeline.Countries, c.Pipeline.Regions, c.Pipeline.Cities} {
		if src.Format != "" && src.Format != "geojson" && src.Format != "shapefile" {
			errs = append(errs, fmt.Sprintf("pipeline.%s.format must be geojson or shapefile, got %q", src.Name, src.Format))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
