package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/booking-api/internal/availability"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

type BookingConfig struct {
	Timezone    string        `mapstructure:"timezone"`
	ModalDays   int           `mapstructure:"modal_days"`
	ProfileDays int           `mapstructure:"profile_days"`
	GridStart   string        `mapstructure:"grid_start"`
	GridEnd     string        `mapstructure:"grid_end"`
	GridStep    int           `mapstructure:"grid_step"`
	LunchHour   int           `mapstructure:"lunch_hour"`
	WizardTTL   time.Duration `mapstructure:"wizard_ttl"`
}

func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c BookingConfig) Grid() (availability.GridConfig, error) {
	start, err := availability.ParseClock(c.GridStart)
	if err != nil {
		return availability.GridConfig{}, fmt.Errorf("booking.grid_start: %w", err)
	}
	end, err := availability.ParseClock(c.GridEnd)
	if err != nil {
		return availability.GridConfig{}, fmt.Errorf("booking.grid_end: %w", err)
	}
	return availability.GridConfig{
		Start:     start,
		End:       end,
		Step:      c.GridStep,
		LunchHour: c.LunchHour,
	}, nil
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type DashboardConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	UpcomingLimit int           `mapstructure:"upcoming_limit"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxFailures   int           `mapstructure:"max_failures"`
	Retention     time.Duration `mapstructure:"retention"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// envOverrides are the BOOKING_* variables that win over the file.
type envOverrides struct {
	Port             int    `envconfig:"PORT"`
	Mode             string `envconfig:"MODE"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
	DatabaseHost     string `envconfig:"DATABASE_HOST"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "booking")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "100ms")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("auth.leeway", "30s")

	v.SetDefault("booking.timezone", "Asia/Baku")
	v.SetDefault("booking.modal_days", availability.ModalDays)
	v.SetDefault("booking.profile_days", availability.ProfileDays)
	v.SetDefault("booking.grid_start", "09:00")
	v.SetDefault("booking.grid_end", "18:00")
	v.SetDefault("booking.grid_step", 30)
	v.SetDefault("booking.lunch_hour", 13)
	v.SetDefault("booking.wizard_ttl", "30m")

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("dashboard.timeout", "5s")
	v.SetDefault("dashboard.upcoming_limit", 10)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", "1s")
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", "200ms")
	v.SetDefault("outbox.max_failures", 5)
	v.SetDefault("outbox.retention", "168h")

	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// LoadConfig reads config.yaml (or path when given) and overlays BOOKING_*
// environment variables. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("booking", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.Mode != "" {
		c.Server.Mode = env.Mode
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.DatabaseHost != "" {
		c.Database.Host = env.DatabaseHost
	}
	if env.DatabasePassword != "" {
		c.Database.Password = env.DatabasePassword
	}
	if env.JWTSecret != "" {
		c.Auth.JWTSecret = env.JWTSecret
	}
	if env.RedisURL != "" {
		c.Redis.URL = env.RedisURL
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if _, err := c.Booking.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.timezone: %v", err))
	}
	if g, err := c.Booking.Grid(); err != nil {
		problems = append(problems, err.Error())
	} else if g.End <= g.Start || g.Step <= 0 {
		problems = append(problems, "booking grid must have grid_end after grid_start and a positive grid_step")
	}
	if c.Booking.ModalDays <= 0 || c.Booking.ProfileDays <= 0 {
		problems = append(problems, "booking.modal_days and booking.profile_days must be positive")
	}

	durations := map[string]time.Duration{
		"server.request_timeout": c.Server.RequestTimeout,
		"booking.wizard_ttl":     c.Booking.WizardTTL,
		"cache.ttl":              c.Cache.TTL,
		"dashboard.timeout":      c.Dashboard.Timeout,
		"outbox.poll_interval":   c.Outbox.PollInterval,
		"outbox.retry_delay":     c.Outbox.RetryDelay,
	}
	for name, d := range durations {
		if d <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.RetryAttempts <= 0 {
		problems = append(problems, "outbox.batch_size and outbox.retry_attempts must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, "rate_limit.rps and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
