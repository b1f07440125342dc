package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "test",
			Password: "test",
			Database: "test_db",
			SSLMode:  "disable",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
		},
		Relay: RelayConfig{
			PollInterval: 5 * time.Second,
			BatchSize:    50,
		},
		Consumer: ConsumerConfig{
			MaxRetries:     3,
			RetryBackoff:   time.Second,
			HandlerTimeout: 30 * time.Second,
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_MissingBrokers(t *testing.T) {
	cfg := validConfig()
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidRelay(t *testing.T) {
	cfg := validConfig()
	cfg.Relay.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Relay.PollInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidConsumer(t *testing.T) {
	cfg := validConfig()
	cfg.Consumer.MaxRetries = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Consumer.HandlerTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Relay.PollInterval)
	assert.Equal(t, 50, cfg.Relay.BatchSize)
	assert.Equal(t, "payment-service-group", cfg.Consumer.PaymentGroup)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	dsn := cfg.Database.DatabaseDSN()
	assert.Equal(t, "host=localhost port=5432 user=test password=test dbname=test_db sslmode=disable", dsn)
}
