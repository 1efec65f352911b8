package logger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robux-town/order-bot/pkg/config"
)

func TestNewBuildsLogger(t *testing.T) {
	cfg := config.Config{AppEnv: "test"}
	cfg.Logger.Level = "debug"
	cfg.Logger.Format = "json"

	log := New(cfg)
	require.NotNil(t, log)

	log.Info("plain logger writes")
}

func TestNewWithSentryFanout(t *testing.T) {
	cfg := config.Config{AppEnv: "test"}
	cfg.Logger.Level = "info"
	cfg.Logger.Format = "text"
	cfg.Sentry.Enabled = true

	log := New(cfg)
	require.NotNil(t, log)

	// Error records flow through the Sentry fan-out branch without a hub
	// being initialized.
	log.Error("fanout logger writes")
}
