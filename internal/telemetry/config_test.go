package telemetry

import (
	"testing"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, ProtocolGRPC, cfg.Protocol)
	assert.Equal(t, "lexisum", cfg.ServiceName)
	assert.Equal(t, 15*time.Second, cfg.MetricsInterval)

	cfg.Enabled = true
	require.NoError(t, cfg.Validate())
}

func TestFromAppConfig(t *testing.T) {
	app := config.Default().Telemetry
	app.Enabled = true
	app.Protocol = ProtocolHTTP
	app.Endpoint = "http://localhost:4318"
	app.Insecure = true
	app.SampleRate = 0.25

	cfg := FromAppConfig(app, "1.4.0")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "1.4.0", cfg.ServiceVersion)
	assert.Equal(t, 0.25, cfg.SampleRate)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"disabled is never checked", func(c *Config) { *c = Config{} }, ""},
		{"no endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint is required"},
		{"unknown protocol", func(c *Config) { c.Protocol = "thrift" }, "protocol must be"},
		{"no service name", func(c *Config) { c.ServiceName = "" }, "service name"},
		{"rate below 0", func(c *Config) { c.SampleRate = -0.1 }, "sample rate"},
		{"rate above 1", func(c *Config) { c.SampleRate = 1.1 }, "sample rate"},
		{"negative interval", func(c *Config) { c.MetricsInterval = -time.Second }, "metrics interval"},
		{"metrics off", func(c *Config) { c.MetricsInterval = 0 }, ""},
		{"no shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "shutdown timeout"},
		{"tls to remote", func(c *Config) {
			c.Endpoint = "collector.prod:4317"
			c.Insecure = false
		}, ""},
		{"plaintext to remote", func(c *Config) { c.Endpoint = "collector.prod:4317" }, "plaintext export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Enabled = true
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:4317", true},
		{"localhost", true},
		{"http://localhost:4318", true},
		{"127.0.0.1:4317", true},
		{"127.0.1.1:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector.prod:4317", false},
		{"https://otel.example.com:4318", false},
		{"192.168.1.1:4317", false},
		{"localhost.example.com:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopback(tt.endpoint))
		})
	}
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "localhost:4318", hostPort("http://localhost:4318"))
	assert.Equal(t, "otel.example.com", hostPort("https://otel.example.com"))
	assert.Equal(t, "localhost:4317", hostPort("localhost:4317"))
}
