package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/opencivic/civicmcp/pkg/shared/stringutil"
)

// ConfigFromEnv builds a config using environment variables only.
func ConfigFromEnv() *Config {
	return ApplyEnvDefaults(&Config{})
}

// ApplyEnvDefaults fills empty config fields from environment variables.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		cfg = &Config{}
	}

	if cfg.TimeoutSecs <= 0 {
		if raw := strings.TrimSpace(os.Getenv("API_TIMEOUT")); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				cfg.TimeoutSecs = secs
			}
		}
	}

	cfg.NASA.APIKey = stringutil.EnvOr(cfg.NASA.APIKey, os.Getenv("NASA_API_KEY"))
	cfg.OpenWeather.APIKey = stringutil.EnvOr(cfg.OpenWeather.APIKey, os.Getenv("OPENWEATHER_API_KEY"))

	cfg.NOAA.BaseURL = stringutil.EnvOr(cfg.NOAA.BaseURL, os.Getenv("NOAA_BASE_URL"))
	cfg.OpenWeather.BaseURL = stringutil.EnvOr(cfg.OpenWeather.BaseURL, os.Getenv("OPENWEATHER_BASE_URL"))
	cfg.Census.BaseURL = stringutil.EnvOr(cfg.Census.BaseURL, os.Getenv("CENSUS_BASE_URL"))
	cfg.NASA.BaseURL = stringutil.EnvOr(cfg.NASA.BaseURL, os.Getenv("NASA_BASE_URL"))
	cfg.NASA.ImagesBaseURL = stringutil.EnvOr(cfg.NASA.ImagesBaseURL, os.Getenv("NASA_IMAGES_BASE_URL"))
	cfg.WorldBank.BaseURL = stringutil.EnvOr(cfg.WorldBank.BaseURL, os.Getenv("WORLDBANK_BASE_URL"))
	cfg.DataGov.BaseURL = stringutil.EnvOr(cfg.DataGov.BaseURL, os.Getenv("DATAGOV_BASE_URL"))
	cfg.EUData.BaseURL = stringutil.EnvOr(cfg.EUData.BaseURL, os.Getenv("EUDATA_BASE_URL"))

	return cfg.WithDefaults()
}
