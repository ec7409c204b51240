package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Scanner  ScannerConfig  `mapstructure:"scanner" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RateLimitPerSecond caps requests per client IP; RateLimitBurst is the
	// token bucket size. Zero disables limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// ScannerConfig controls the background reminder scanner.
type ScannerConfig struct {
	// IntervalSeconds is how often the scanner wakes up.
	IntervalSeconds int `mapstructure:"interval_seconds" validate:"required,gt=0"`

	// DueLookaheadMinutes is how far ahead of a due date the due-soon alert
	// fires.
	DueLookaheadMinutes int `mapstructure:"due_lookahead_minutes" validate:"required,gt=0"`
}
