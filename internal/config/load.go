package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment variable read by Load, e.g.
// BROCCOLI_DATABASE_URL for database.url.
const envPrefix = "BROCCOLI"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Returns a populated Config struct or an error
// describing what is missing or malformed.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers a default for every key. Viper's AutomaticEnv only
// resolves keys it already knows about, so even required settings get a
// (possibly empty) default here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.api_key", "")

	v.SetDefault("queue.redis_addr", "")
	v.SetDefault("queue.redis_password", "")
	v.SetDefault("queue.max_attempts", 5)
	v.SetDefault("queue.visibility_timeout", 30*time.Second)
	v.SetDefault("queue.backoff_initial", time.Second)
	v.SetDefault("queue.backoff_max", 2*time.Minute)

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.poll_interval", time.Second)

	v.SetDefault("scheduler.fire_time", "08:00")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.stagger", 5*time.Second)
	v.SetDefault("scheduler.weekly_anchor_day", 0)
	v.SetDefault("scheduler.monthly_anchor_date", 1)

	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.api_key", "")

	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from", "")

	v.SetDefault("recipes.api_key", "")
	v.SetDefault("recipes.base_url", "https://api.spoonacular.com")
}

// validate checks struct tags plus the cross-field rules the tags cannot
// express.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", verrs.Error())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.Parse("15:04", cfg.Scheduler.FireTime); err != nil {
		return fmt.Errorf("invalid configuration: scheduler.fire_time %q is not HH:MM", cfg.Scheduler.FireTime)
	}
	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: scheduler.timezone %q: %w", cfg.Scheduler.Timezone, err)
	}
	return nil
}
