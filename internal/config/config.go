package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Modes.
const (
	ModeLive    = "live"
	ModeFixture = "fixture"
)

// Creator store drivers.
const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Search providers.
const (
	ProviderExa    = "exa"
	ProviderGoogle = "google"
)

// Config holds the creatorscout configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
	Mode         string             `yaml:"mode"` // live (default) or fixture
	CreatorStore CreatorStoreConfig `yaml:"creator_store"`
	SearchCache  SearchCacheConfig  `yaml:"search_cache"`
	Ledger       LedgerConfig       `yaml:"ledger"`
	Search       SearchConfig       `yaml:"search"`
	Ensemble     EnsembleConfig     `yaml:"ensemble"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Fixtures     FixturesConfig     `yaml:"fixtures"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json or console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CreatorStoreConfig holds the creator cache settings.
type CreatorStoreConfig struct {
	Driver           string   `yaml:"driver"` // redis (default) or sqlite
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	SQLitePath       string   `yaml:"sqlite_path"`
	KeyPrefix        string   `yaml:"key_prefix"`
	MaxAgeDays       int      `yaml:"max_age_days"`
	Workers          int      `yaml:"workers"`
	CallTimeoutMs    int      `yaml:"call_timeout_ms"`
}

// MaxAge returns the freshness window of cached creators.
func (c CreatorStoreConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

// CallTimeout returns the per-call store deadline, zero when unset.
func (c CreatorStoreConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMs) * time.Millisecond
}

// SearchCacheConfig holds the search result cache settings. An empty URL
// disables the cache.
type SearchCacheConfig struct {
	URL      string `yaml:"url"` // redis://host:port/db
	TTLHours int    `yaml:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c SearchCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// LedgerConfig holds the session ledger settings. An empty URI disables
// session recording.
type LedgerConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// RateLimitConfig throttles calls to one provider. Zero means unlimited.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	Provider     string          `yaml:"provider"` // exa (default) or google
	ExaAPIKey    string          `yaml:"exa_api_key"`
	ExaBaseURL   string          `yaml:"exa_base_url"`
	GoogleAPIKey string          `yaml:"google_api_key"`
	GoogleCX     string          `yaml:"google_cx"`
	MaxResults   int             `yaml:"max_results"` // hits per query
	Workers      int             `yaml:"workers"`
	TimeoutSec   int             `yaml:"timeout_sec"`
	DefaultLimit int             `yaml:"default_limit"`
	MaxLimit     int             `yaml:"max_limit"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// BudgetConfig holds crawl unit budget settings.
type BudgetConfig struct {
	DailyUnitLimit   int64  `yaml:"daily_unit_limit"`   // 0 = unlimited
	MonthlyUnitLimit int64  `yaml:"monthly_unit_limit"` // 0 = unlimited
	Action           string `yaml:"action"`             // "reject" | "warn" (default)
}

// EnsembleConfig holds the crawl provider settings.
type EnsembleConfig struct {
	Token         string          `yaml:"token"`
	BaseURL       string          `yaml:"base_url"`
	TimeoutSec    int             `yaml:"timeout_sec"`
	TikTokPeriod  string          `yaml:"tiktok_period"` // search window in days
	TikTokWorkers int             `yaml:"tiktok_workers"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
	Budget        BudgetConfig    `yaml:"budget"`
}

// OpenAIConfig holds keyword suggestion settings. An empty key disables it.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	MaxKeywords int    `yaml:"max_keywords"`
}

// FixturesConfig holds fixture mode settings.
type FixturesConfig struct {
	Dir string `yaml:"dir"`
}

// TelemetryConfig holds tracing settings. The exporter endpoint comes from
// OTEL_EXPORTER_OTLP_ENDPOINT.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands, decodes, defaults and validates raw YAML.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Mode == "" {
		c.Mode = ModeLive
	}

	cs := &c.CreatorStore
	if cs.Driver == "" {
		cs.Driver = DriverRedis
	}
	if cs.ReadinessTimeout <= 0 {
		cs.ReadinessTimeout = 10
	}
	if cs.SQLitePath == "" {
		cs.SQLitePath = filepath.Join("data", "creators.db")
	}
	if cs.KeyPrefix == "" {
		cs.KeyPrefix = "creatorscout:creator:"
	}
	if cs.MaxAgeDays <= 0 {
		cs.MaxAgeDays = 7
	}
	if cs.Workers <= 0 {
		cs.Workers = 5
	}

	if c.SearchCache.TTLHours <= 0 {
		c.SearchCache.TTLHours = 24
	}
	if c.Ledger.Database == "" {
		c.Ledger.Database = "creatorscout"
	}
	if c.Ledger.Collection == "" {
		c.Ledger.Collection = "session_influencers"
	}

	s := &c.Search
	if s.Provider == "" {
		s.Provider = ProviderExa
	}
	if s.MaxResults <= 0 {
		s.MaxResults = 10
	}
	if s.Workers <= 0 {
		s.Workers = 5
	}
	if s.TimeoutSec <= 0 {
		s.TimeoutSec = 30
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 10
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 50
	}

	e := &c.Ensemble
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 60
	}
	if e.TikTokPeriod == "" {
		e.TikTokPeriod = "180"
	}
	if e.TikTokWorkers <= 0 {
		e.TikTokWorkers = 10
	}

	if c.Fixtures.Dir == "" {
		c.Fixtures.Dir = "fixtures"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "creatorscout"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}
	switch c.Mode {
	case ModeLive, ModeFixture:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeLive, ModeFixture, c.Mode)
	}
	switch c.CreatorStore.Driver {
	case DriverRedis:
		if len(c.CreatorStore.Addrs) == 0 {
			return fmt.Errorf("creator_store.addrs is required for the redis driver")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("creator_store.driver must be %q or %q, got %q",
			DriverRedis, DriverSQLite, c.CreatorStore.Driver)
	}
	switch c.Search.Provider {
	case ProviderExa, ProviderGoogle:
	default:
		return fmt.Errorf("search.provider must be %q or %q, got %q",
			ProviderExa, ProviderGoogle, c.Search.Provider)
	}
	switch c.Ensemble.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"ensemble.budget.action must be \"warn\" or \"reject\", got %q",
			c.Ensemble.Budget.Action,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
