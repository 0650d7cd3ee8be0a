package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// College Football Data API (primary games/rankings/scores source)
	CFBDAPIKey  string        `envconfig:"CFBD_API_KEY" default:""`
	CFBDBaseURL string        `envconfig:"CFBD_BASE_URL" default:"https://api.collegefootballdata.com"`
	CFBDTimeout time.Duration `envconfig:"CFBD_TIMEOUT" default:"30s"`

	// ESPN scoreboard API (secondary, no credential)
	ESPNBaseURL string        `envconfig:"ESPN_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/football/college-football"`
	ESPNTimeout time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`

	// The Odds API (spread quotes)
	OddsAPIKey           string        `envconfig:"ODDS_API_KEY" default:""`
	OddsBaseURL          string        `envconfig:"ODDS_BASE_URL" default:"https://api.the-odds-api.com/v4"`
	OddsTimeout          time.Duration `envconfig:"ODDS_TIMEOUT" default:"30s"`
	OddsProviderPriority []string      `envconfig:"ODDS_PROVIDER_PRIORITY" default:"draftkings,fanduel,bovada"`

	// Scoreboard scrape fallback
	ScrapeURL     string        `envconfig:"SCRAPE_URL" default:""`
	ScrapeTimeout time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"30s"`

	// Delay between consecutive upstream calls during fallback
	SourceCallDelay time.Duration `envconfig:"SOURCE_CALL_DELAY" default:"2s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     string `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"pickem"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"pickem_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (source health log)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Season
	SeasonYear  int    `envconfig:"SEASON_YEAR" required:"true"`
	SeasonStart string `envconfig:"SEASON_START" required:"true"` // YYYY-MM-DD, week 1 Monday

	// Watch-listed teams whose games always make the week's slate
	FavoriteTeams []string `envconfig:"FAVORITE_TEAMS" default:"michigan"`

	// Scheduler
	EnableScheduler     bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	AcquisitionCron     string        `envconfig:"ACQUISITION_CRON" default:"0 6 * * 2"`
	GradingPollInterval time.Duration `envconfig:"GRADING_POLL_INTERVAL" default:"10m"`
	AcquisitionTimeout  time.Duration `envconfig:"ACQUISITION_TIMEOUT" default:"5m"`
	GradingTimeout      time.Duration `envconfig:"GRADING_TIMEOUT" default:"3m"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.SeasonYear < 2000 {
		return fmt.Errorf("SEASON_YEAR %d is not a valid season", c.SeasonYear)
	}

	// A missing source key is not fatal here: the adapter fails fast with
	// a configuration error and the pipeline falls back to the next source.
	if _, err := c.ParsedSeasonStart(); err != nil {
		return err
	}

	return nil
}

// ParsedSeasonStart parses SEASON_START as a calendar date.
func (c *Config) ParsedSeasonStart() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.SeasonStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("SEASON_START must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
