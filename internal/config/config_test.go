package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  host: 0.0.0.0
  http_port: 8080
  grpc_port: 9090
database:
  driver: memory
jwt:
  secret: 0123456789abcdef0123456789abcdef
`

func TestParse(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(baseYAML))
		require.NoError(t, err)

		assert.Equal(t, DriverMemory, cfg.Database.Driver)
		assert.Equal(t, "0 0 6 * * *", cfg.Scheduler.LifecycleSweep)
		assert.Equal(t, "rental.orders", cfg.Kafka.Topic)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "0.0.0.0:8080", cfg.GetHTTPAddress())
		assert.Equal(t, "0.0.0.0:9090", cfg.GetGRPCAddress())
		assert.False(t, cfg.Server.GRPCReflection)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("HTTP_PORT", "8181")
		t.Setenv("GRPC_REFLECTION", "true")

		cfg, err := Parse([]byte(baseYAML))
		require.NoError(t, err)

		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 8181, cfg.Server.HTTPPort)
		assert.True(t, cfg.Server.GRPCReflection)
	})

	t.Run("PostgresRequiresHost", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")

		_, err := Parse([]byte(baseYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database host is required")
	})

	t.Run("ShortSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")

		_, err := Parse([]byte(baseYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")

		_, err := Parse([]byte(baseYAML))
		assert.Error(t, err)
	})
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("GET /healthz"))
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/grpc.health.v1.Health/Check"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("POST /api/v1/quotations/{id}/confirm"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/unknown.Service/Method"))
}
