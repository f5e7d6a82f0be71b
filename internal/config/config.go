package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv         string `envconfig:"APP_ENV" default:"development"`
	Port           string `envconfig:"PORT" default:"8080"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASS"`
	DBName     string `envconfig:"DB_NAME" default:"practice_forum"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Empty disables redis; the scheduler then relies on the database guard alone.
	RedisURL string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"12345"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"72h"`

	GeminiAPIKey            string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel             string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	BlockTitleMasterPrompt  string        `envconfig:"BLOCK_TITLE_MASTER_PROMPT"`
	PostContentMasterPrompt string        `envconfig:"POST_CONTENT_MASTER_PROMPT"`
	GeneratorTimeout        time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"30s"`

	SchedulerSpec        string        `envconfig:"SCHEDULER_SPEC" default:"@every 1m"`
	SchedulerTimezone    string        `envconfig:"SCHEDULER_TIMEZONE" default:"UTC"`
	SchedulerConcurrency int           `envconfig:"SCHEDULER_CONCURRENCY" default:"8"`
	ScheduleLockTTL      time.Duration `envconfig:"SCHEDULE_LOCK_TTL" default:"2m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeneratorTimeout <= 0 {
		return fmt.Errorf("GENERATOR_TIMEOUT must be positive, got %s", c.GeneratorTimeout)
	}
	if c.SchedulerConcurrency <= 0 {
		return fmt.Errorf("SCHEDULER_CONCURRENCY must be positive, got %d", c.SchedulerConcurrency)
	}
	if c.ScheduleLockTTL <= 0 {
		return fmt.Errorf("SCHEDULE_LOCK_TTL must be positive, got %s", c.ScheduleLockTTL)
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		return fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.SchedulerTimezone, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DatabaseDSN returns the gorm postgres DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
