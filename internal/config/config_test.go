package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply per-service defaults", func(t *testing.T) {
		cfg, err := Load(Finance)
		require.NoError(t, err)

		assert.Equal(t, Finance, cfg.Service)
		assert.Equal(t, 8082, cfg.Server.Port)
		assert.Equal(t, ":8082", cfg.Server.Addr())
		assert.Equal(t, "fintrack_finance", cfg.Database.Name)
		assert.Equal(t, "http://localhost:8085", cfg.Services.InsightURL)
		assert.Equal(t, 10*time.Second, cfg.Services.ClientTimeout)
		assert.Equal(t, int64(16), cfg.Dispatcher.Capacity)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Gateway.AllowedOrigins)
		assert.False(t, cfg.Database.InMemory())
	})

	t.Run("should use each service's default port", func(t *testing.T) {
		for service, port := range map[string]int{Gateway: 8081, Goals: 8083, Accounts: 8084, Insight: 8085} {
			cfg, err := Load(service)
			require.NoError(t, err)
			assert.Equal(t, port, cfg.Server.Port, service)
		}
	})

	t.Run("should override values from prefixed environment variables", func(t *testing.T) {
		t.Setenv("FINTRACK_SERVER_PORT", "9100")
		t.Setenv("FINTRACK_DATABASE_DRIVER", "memory")
		t.Setenv("FINTRACK_EVENTS_BROKERS", "kafka-1:9092,kafka-2:9092")
		t.Setenv("FINTRACK_INSIGHT_SWEEP_INTERVAL", "1m")

		cfg, err := Load(Insight)
		require.NoError(t, err)

		assert.Equal(t, 9100, cfg.Server.Port)
		assert.True(t, cfg.Database.InMemory())
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
		assert.Equal(t, time.Minute, cfg.Insight.SweepInterval)
	})

	t.Run("should honor legacy database variables", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_NAME", "ledger")

		cfg, err := Load(Goals)
		require.NoError(t, err)

		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
		assert.Contains(t, cfg.Database.DSN(), "dbname=ledger")
	})

	t.Run("should reject unknown services", func(t *testing.T) {
		_, err := Load("billing")
		assert.Error(t, err)
	})

	t.Run("should reject unsupported drivers", func(t *testing.T) {
		t.Setenv("FINTRACK_DATABASE_DRIVER", "sqlite")

		_, err := Load(Accounts)
		assert.Error(t, err)
	})
}
