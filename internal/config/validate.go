package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 0 (got %d)", c.Server.RateLimitPerMinute)
	}

	if err := c.Directory.validate(); err != nil {
		return fmt.Errorf("directory: %w", err)
	}

	return nil
}

func (d *DirectoryConfig) validate() error {
	if d.MaxLimit < 1 {
		return fmt.Errorf("max_limit must be >= 1 (got %d)", d.MaxLimit)
	}
	if d.DefaultLimit < 1 || d.DefaultLimit > d.MaxLimit {
		return fmt.Errorf("default_limit must be in [1, %d] (got %d)", d.MaxLimit, d.DefaultLimit)
	}
	if d.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", d.RequestTimeout)
	}
	if d.RecentActivityDays < 1 {
		return fmt.Errorf("recent_activity_days must be >= 1 (got %d)", d.RecentActivityDays)
	}
	return nil
}
