package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DefaultPreferredOrder is the display ranking of Taiwan's counties and cities.
var DefaultPreferredOrder = []string{
	"臺北市", "基隆市", "新北市", "桃園市", "新竹市", "新竹縣", "苗栗縣",
	"臺中市", "彰化縣", "南投縣", "雲林縣", "嘉義市", "嘉義縣", "臺南市",
	"高雄市", "屏東縣", "宜蘭縣", "花蓮縣", "臺東縣", "澎湖縣", "金門縣", "連江縣",
}

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP           HTTPConfig    `yaml:"http"`
	Log            LogConfig     `yaml:"log"`
	CWA            CWAConfig     `yaml:"cwa"`
	Imagery        ImageryConfig `yaml:"imagery"`
	Timezone       string        `yaml:"timezone"`
	PreferredOrder []string      `yaml:"preferredOrder"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	AllowOrigins []string        `yaml:"allowOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CWAConfig holds the Central Weather Administration open-data settings.
type CWAConfig struct {
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	AlertsTimeout   time.Duration `yaml:"alertsTimeout"`
	ForecastTimeout time.Duration `yaml:"forecastTimeout"`
	CycloneTimeout  time.Duration `yaml:"cycloneTimeout"`
}

// ImageryConfig contains the URL templates for radar and satellite images.
// Each template carries a single %s verb for the formatted timestamp.
type ImageryConfig struct {
	RadarURLTemplate     string `yaml:"radarUrlTemplate"`
	SatelliteURLTemplate string `yaml:"satelliteUrlTemplate"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured civil timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CWA_API_KEY"); v != "" {
		cfg.CWA.APIKey = v
	}
	if v := os.Getenv("CWA_BASE_URL"); v != "" {
		cfg.CWA.BaseURL = v
	}
	if v := os.Getenv("CWA_ALERTS_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.CWA.AlertsTimeout = parsed
		}
	}
	if v := os.Getenv("CWA_FORECAST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.CWA.ForecastTimeout = parsed
		}
	}
	if v := os.Getenv("CWA_CYCLONE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.CWA.CycloneTimeout = parsed
		}
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("PREFERRED_ORDER"); v != "" {
		cfg.PreferredOrder = splitList(v)
	}
	if v := os.Getenv("IMAGERY_RADAR_URL_TEMPLATE"); v != "" {
		cfg.Imagery.RadarURLTemplate = v
	}
	if v := os.Getenv("IMAGERY_SATELLITE_URL_TEMPLATE"); v != "" {
		cfg.Imagery.SatelliteURLTemplate = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":4000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 20 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CWA: CWAConfig{
			BaseURL:         "https://opendata.cwa.gov.tw/api/v1/rest/datastore",
			AlertsTimeout:   10 * time.Second,
			ForecastTimeout: 10 * time.Second,
			CycloneTimeout:  15 * time.Second,
		},
		Imagery: ImageryConfig{
			RadarURLTemplate:     "https://www.cwa.gov.tw/Data/radar/CV1_3600_%s.png",
			SatelliteURLTemplate: "https://www.cwa.gov.tw/Data/satellite/LCC_TRGB_2750/LCC_TRGB_2750-%s.jpg",
		},
		Timezone:       "Asia/Taipei",
		PreferredOrder: append([]string(nil), DefaultPreferredOrder...),
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.CWA.APIKey) == "" {
		return errors.New("cwa.apiKey cannot be empty")
	}
	if strings.TrimSpace(c.CWA.BaseURL) == "" {
		return errors.New("cwa.baseUrl cannot be empty")
	}
	if c.CWA.AlertsTimeout <= 0 || c.CWA.ForecastTimeout <= 0 || c.CWA.CycloneTimeout <= 0 {
		return errors.New("cwa timeouts must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q is not a valid IANA zone", c.Timezone)
	}
	if strings.Count(c.Imagery.RadarURLTemplate, "%s") != 1 {
		return errors.New("imagery.radarUrlTemplate must contain exactly one %s")
	}
	if strings.Count(c.Imagery.SatelliteURLTemplate, "%s") != 1 {
		return errors.New("imagery.satelliteUrlTemplate must contain exactly one %s")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
