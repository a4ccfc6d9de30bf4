// Package config holds the process-wide configuration snapshot for the
// civic data server. Values come from an optional YAML file overlaid by
// environment variables and are read once at startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeoutSecs = 30

	DefaultNOAABaseURL        = "https://api.weather.gov"
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"
	DefaultCensusBaseURL      = "https://api.census.gov/data"
	DefaultNASABaseURL        = "https://api.nasa.gov"
	DefaultNASAImagesBaseURL  = "https://images-api.nasa.gov"
	DefaultWorldBankBaseURL   = "https://api.worldbank.org/v2"
	DefaultDataGovBaseURL     = "https://catalog.data.gov/api/3"
	DefaultEUDataBaseURL      = "https://data.europa.eu/api/hub/search"
)

// Config controls upstream provider endpoints and credentials.
type Config struct {
	TimeoutSecs int `yaml:"timeout_seconds"`

	NOAA        ProviderConfig `yaml:"noaa"`
	OpenWeather ProviderConfig `yaml:"openweather"`
	Census      ProviderConfig `yaml:"census"`
	NASA        NASAConfig     `yaml:"nasa"`
	WorldBank   ProviderConfig `yaml:"worldbank"`
	DataGov     ProviderConfig `yaml:"datagov"`
	EUData      ProviderConfig `yaml:"eudata"`
}

// ProviderConfig is the per-upstream endpoint configuration.
type ProviderConfig struct {
	Enabled *bool  `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// NASAConfig extends ProviderConfig with the separate image-library host.
type NASAConfig struct {
	ProviderConfig `yaml:",inline"`
	ImagesBaseURL  string `yaml:"images_base_url"`
}

// Load reads a YAML config file and fills empty fields from the
// environment. An empty path skips the file and uses env values only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return ApplyEnvDefaults(cfg), nil
}

// WithDefaults fills unset fields with built-in defaults.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	defaultURL(&c.NOAA.BaseURL, DefaultNOAABaseURL)
	defaultURL(&c.OpenWeather.BaseURL, DefaultOpenWeatherBaseURL)
	defaultURL(&c.Census.BaseURL, DefaultCensusBaseURL)
	defaultURL(&c.NASA.BaseURL, DefaultNASABaseURL)
	defaultURL(&c.NASA.ImagesBaseURL, DefaultNASAImagesBaseURL)
	defaultURL(&c.WorldBank.BaseURL, DefaultWorldBankBaseURL)
	defaultURL(&c.DataGov.BaseURL, DefaultDataGovBaseURL)
	defaultURL(&c.EUData.BaseURL, DefaultEUDataBaseURL)
	return c
}

// HasNASAKey reports whether a NASA API key is configured.
func (c *Config) HasNASAKey() bool {
	return strings.TrimSpace(c.NASA.APIKey) != ""
}

// HasOpenWeather reports whether the OpenWeather tools can run.
func (c *Config) HasOpenWeather() bool {
	return strings.TrimSpace(c.OpenWeather.APIKey) != ""
}

// AvailabilitySummary returns a human-readable listing of which upstream
// capabilities are active, printed once at startup.
func (c *Config) AvailabilitySummary() string {
	lines := []string{
		"API Availability:",
		"  ✓ NOAA (no key required)",
		"  ✓ Census (no key required)",
	}
	if c.HasNASAKey() {
		lines = append(lines, "  ✓ NASA (using API key for higher limits)")
	} else {
		lines = append(lines, "  ✓ NASA (no key, limited to 30 req/hour)")
	}
	if c.HasOpenWeather() {
		lines = append(lines, "  ✓ OpenWeather (API key configured)")
	} else {
		lines = append(lines, "  ✗ OpenWeather (OPENWEATHER_API_KEY not set)")
	}
	lines = append(lines,
		"  ✓ World Bank (no key required)",
		"  ✓ Data.gov (no key required)",
		"  ✓ EU Open Data (no key required)",
	)
	return strings.Join(lines, "\n")
}

// IsEnabled interprets an optional enabled flag with a default.
func IsEnabled(enabled *bool, def bool) bool {
	if enabled == nil {
		return def
	}
	return *enabled
}

func defaultURL(field *string, def string) {
	if strings.TrimSpace(*field) == "" {
		*field = def
	}
}
