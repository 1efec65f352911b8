package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the order bot. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Commerce CommerceConfig `mapstructure:"commerce" validate:"required"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles how fast a single user may drive the bot.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	PerUser RateLimitRule `mapstructure:"per_user"`
	// Whitelist lists user IDs exempt from rate limiting.
	Whitelist []int64 `mapstructure:"whitelist"`
}

// RateLimitRule defines a sliding-window rule.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// Mode selects the update delivery mechanism: "polling" or "webhook".
	Mode    string        `mapstructure:"mode" validate:"omitempty,oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	// WebhookListen and WebhookURL configure webhook mode delivery.
	WebhookListen string `mapstructure:"webhook_listen" validate:"required_if=Mode webhook"`
	WebhookURL    string `mapstructure:"webhook_url" validate:"omitempty,url"`
	// PanelChatID is the chat where /panel posts the order panel.
	PanelChatID int64 `mapstructure:"panel_chat_id" validate:"required"`
	// TicketsChatID is the forum supergroup where order topics are created.
	TicketsChatID int64 `mapstructure:"tickets_chat_id" validate:"required"`
	// StaffIDs lists users allowed to run staff commands.
	StaffIDs []int64 `mapstructure:"staff_ids"`
}

// ServerConfig configures the ops HTTP server (health and metrics).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		sslMode,
	)
}

// RedisConfig configures the Redis connection used for sessions, locks,
// idempotency, and rate limiting.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level  string     `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string     `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File   FileConfig `mapstructure:"file"`
}

// FileConfig enables rotated log files in addition to stdout.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string `mapstructure:"environment"`
}

// CommerceConfig carries the order-flow settings: minimum order, rate, and
// the payment destinations for every method.
type CommerceConfig struct {
	// MinAmount is the smallest accepted Robux order.
	MinAmount int64 `mapstructure:"min_amount" validate:"gt=0"`
	// RatePerThousand is the USD price per 1,000 Robux.
	RatePerThousand float64 `mapstructure:"rate_per_thousand" validate:"gt=0"`

	EnebaLink            string `mapstructure:"eneba_link" validate:"required,url"`
	G2ALink              string `mapstructure:"g2a_link" validate:"required,url"`
	GiftcardInstructions string `mapstructure:"giftcard_instructions" validate:"required"`

	Crypto CryptoAddresses `mapstructure:"crypto" validate:"required"`

	// SessionTTL is how long a wizard session may sit idle before it is
	// cancelled and its thread closed.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// CleanupInterval is how often idle sessions are scanned for expiry.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	// BannerURL is an optional image attached to the order panel.
	BannerURL string `mapstructure:"banner_url" validate:"omitempty,url"`
}

// CryptoAddresses holds the payment address for each supported coin.
type CryptoAddresses struct {
	BTC  string `mapstructure:"btc" validate:"required"`
	LTC  string `mapstructure:"ltc" validate:"required"`
	ETH  string `mapstructure:"eth" validate:"required"`
	SOL  string `mapstructure:"sol" validate:"required"`
	USDT string `mapstructure:"usdt" validate:"required"`
}

// IsStaff reports whether the given Telegram user may run staff commands.
func (c BotConfig) IsStaff(userID int64) bool {
	for _, id := range c.StaffIDs {
		if id == userID {
			return true
		}
	}
	return false
}
