package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Queue     QueueConfig     `mapstructure:"queue" validate:"required"`
	Worker    WorkerConfig    `mapstructure:"worker" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	OCR       OCRConfig       `mapstructure:"ocr" validate:"required"`
	Email     EmailConfig     `mapstructure:"email" validate:"required"`
	Recipes   RecipesConfig   `mapstructure:"recipes"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings for the enqueue API surface.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key" validate:"required,min=16"`
}

// QueueConfig contains the job store settings. When RedisAddr is empty the
// in-memory store is used; that mode is for local development only.
type QueueConfig struct {
	RedisAddr         string        `mapstructure:"redis_addr"`
	RedisPassword     string        `mapstructure:"redis_password"`
	MaxAttempts       int           `mapstructure:"max_attempts" validate:"required,gt=0"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout" validate:"required,gt=0"`
	BackoffInitial    time.Duration `mapstructure:"backoff_initial" validate:"required,gt=0"`
	BackoffMax        time.Duration `mapstructure:"backoff_max" validate:"required,gt=0"`
}

// WorkerConfig contains the consumer-side settings.
type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency" validate:"required,gt=0"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,gt=0"`
}

// SchedulerConfig contains the daily report trigger settings.
type SchedulerConfig struct {
	FireTime string        `mapstructure:"fire_time" validate:"required"`
	Timezone string        `mapstructure:"timezone" validate:"required"`
	Stagger  time.Duration `mapstructure:"stagger" validate:"required,gt=0"`
	// WeeklyAnchorDay follows time.Weekday numbering (0 = Sunday).
	WeeklyAnchorDay   int `mapstructure:"weekly_anchor_day" validate:"gte=0,lte=6"`
	MonthlyAnchorDate int `mapstructure:"monthly_anchor_date" validate:"required,gte=1,lte=28"`
}

// OCRConfig contains the receipt scraping service settings.
type OCRConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`
	APIKey   string `mapstructure:"api_key" validate:"required"`
}

// EmailConfig contains the outbound email settings.
type EmailConfig struct {
	APIKey string `mapstructure:"api_key" validate:"required"`
	From   string `mapstructure:"from" validate:"required"`
}

// RecipesConfig contains the recipe suggestion settings. Optional: with an
// empty APIKey the daily report simply omits the recipe block.
type RecipesConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}
