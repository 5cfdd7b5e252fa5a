package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/intrinsic/internal/models"
)

// Config represents the application configuration
type Config struct {
	Valuation ValuationConfig `toml:"valuation"`
	EODHD     EODHDConfig     `toml:"eodhd"`
	Cache     CacheConfig     `toml:"cache"`
	Report    ReportConfig    `toml:"report"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ValuationConfig holds the DCF parameters. Rates are fractions (0.10 = 10%).
type ValuationConfig struct {
	DiscountRate float64 `toml:"discount_rate" validate:"gt=0,lt=1"`
	GrowthRate   float64 `toml:"growth_rate" validate:"gt=-1,lt=1"`
	HistoryYears int     `toml:"history_years" validate:"gte=0,lte=30"` // 0 keeps every year the provider returns
}

// EODHDConfig configures the market data provider.
type EODHDConfig struct {
	APIKey          string `toml:"api_key" validate:"required"`
	BaseURL         string `toml:"base_url" validate:"required,url"`
	Timeout         string `toml:"timeout" validate:"required"` // per-ticker deadline, e.g. "30s"
	RateLimit       int    `toml:"rate_limit" validate:"gte=0"` // requests per second, 0 = client default
	DefaultExchange string `toml:"default_exchange" validate:"required"`
}

// CacheConfig configures the on-disk fundamentals cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type" validate:"omitempty,oneof=none rolling_time hard_time"`
	Hours   int    `toml:"hours" validate:"gte=0"`
	Path    string `toml:"path" validate:"required_if=Enabled true"`
}

// ReportConfig configures report sinks.
type ReportConfig struct {
	Dir     string   `toml:"dir" validate:"required"`
	Formats []string `toml:"formats" validate:"min=1,dive,oneof=console xlsx pdf markdown"`
}

// LoggingConfig configures the arbor logger.
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	TimeFormat string   `toml:"time_format"`
	FilePath   string   `toml:"file_path"` // used when output includes "file"
}

// ConfigSearchPaths are checked in order when no config file is given.
var ConfigSearchPaths = []string{
	"intrinsic.toml",
	"deployments/local/intrinsic.toml",
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Valuation: ValuationConfig{
			DiscountRate: 0.10,
			GrowthRate:   0.05,
			HistoryYears: 4,
		},
		EODHD: EODHDConfig{
			BaseURL:         "https://eodhd.com/api",
			Timeout:         "30s",
			RateLimit:       10,
			DefaultExchange: DefaultExchange,
		},
		Cache: CacheConfig{
			Enabled: true,
			Type:    string(models.CacheTypeRollingTime),
			Hours:   24,
			Path:    "./data/cache",
		},
		Report: ReportConfig{
			Dir:     "analysis_results",
			Formats: []string{"console", "xlsx"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			FilePath:   "logs/intrinsic.log",
		},
	}
}

// DiscoverConfigPaths returns the first existing file from ConfigSearchPaths, if any.
func DiscoverConfigPaths() []string {
	for _, path := range ConfigSearchPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return []string{path}
		}
	}
	return nil
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies INTRINSIC_* environment variables. EODHD_API_KEY is
// also honoured since that is the name the provider documents.
func applyEnvOverrides(config *Config) {
	if v, ok := envFloat("INTRINSIC_DISCOUNT_RATE"); ok {
		config.Valuation.DiscountRate = v
	}
	if v, ok := envFloat("INTRINSIC_GROWTH_RATE"); ok {
		config.Valuation.GrowthRate = v
	}
	if v, ok := envInt("INTRINSIC_HISTORY_YEARS"); ok {
		config.Valuation.HistoryYears = v
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}
	if key := os.Getenv("INTRINSIC_EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}
	if url := os.Getenv("INTRINSIC_EODHD_BASE_URL"); url != "" {
		config.EODHD.BaseURL = url
	}
	if timeout := os.Getenv("INTRINSIC_EODHD_TIMEOUT"); timeout != "" {
		config.EODHD.Timeout = timeout
	}
	if v, ok := envInt("INTRINSIC_EODHD_RATE_LIMIT"); ok {
		config.EODHD.RateLimit = v
	}
	if exchange := os.Getenv("INTRINSIC_DEFAULT_EXCHANGE"); exchange != "" {
		config.EODHD.DefaultExchange = strings.ToUpper(exchange)
	}

	if enabled := os.Getenv("INTRINSIC_CACHE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Cache.Enabled = b
		}
	}
	if path := os.Getenv("INTRINSIC_CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}
	if v, ok := envInt("INTRINSIC_CACHE_HOURS"); ok {
		config.Cache.Hours = v
	}

	if dir := os.Getenv("INTRINSIC_REPORT_DIR"); dir != "" {
		config.Report.Dir = dir
	}
	if formats := splitList(os.Getenv("INTRINSIC_REPORT_FORMATS")); len(formats) > 0 {
		config.Report.Formats = formats
	}

	if level := os.Getenv("INTRINSIC_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if outputs := splitList(os.Getenv("INTRINSIC_LOG_OUTPUT")); len(outputs) > 0 {
		config.Logging.Output = outputs
	}
}

func envFloat(name string) (float64, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks struct constraints. Rates that make the DCF undefined are not
// rejected here; see CheckValuationParameters.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.EODHD.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// CheckValuationParameters reports a discount rate that does not exceed the
// growth rate. Such a run still reports every other category.
func (c *Config) CheckValuationParameters() error {
	return c.ValuationParameters().Validate()
}

// ValuationParameters returns the DCF parameters for the metrics engine.
func (c *Config) ValuationParameters() models.ValuationParameters {
	return models.ValuationParameters{
		DiscountRate: c.Valuation.DiscountRate,
		GrowthRate:   c.Valuation.GrowthRate,
	}
}

// TimeoutDuration parses the per-ticker timeout.
func (e EODHDConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0, fmt.Errorf("eodhd.timeout %q: %w", e.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("eodhd.timeout must be positive, got %s", e.Timeout)
	}
	return d, nil
}

// Policy returns the freshness policy for cached payloads.
func (c CacheConfig) Policy() models.CacheConfig {
	return models.CacheConfig{
		Type:    models.ParseCacheType(c.Type),
		Hours:   c.Hours,
		Enabled: c.Enabled,
	}
}

// HasFormat reports whether a report format is enabled.
func (r ReportConfig) HasFormat(format string) bool {
	for _, f := range r.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
