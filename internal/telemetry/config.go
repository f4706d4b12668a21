package telemetry

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/config"
)

// OTLP transports.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Config controls OTLP export of spans and metrics.
type Config struct {
	Enabled        bool
	Endpoint       string // host:port; an http(s):// prefix is tolerated
	Protocol       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	SampleRate     float64

	MetricsInterval time.Duration // zero disables metric export
	ShutdownTimeout time.Duration
}

// NewDefaultConfig returns a disabled config pointing at a local collector.
func NewDefaultConfig() *Config {
	return &Config{
		Endpoint:        "localhost:4317",
		Protocol:        ProtocolGRPC,
		Insecure:        true,
		ServiceName:     "lexisum",
		ServiceVersion:  "dev",
		SampleRate:      1,
		MetricsInterval: 15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// FromAppConfig applies the user-facing telemetry settings to the defaults.
func FromAppConfig(c config.TelemetryConfig, version string) *Config {
	cfg := NewDefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.Insecure = c.Insecure
	cfg.SampleRate = c.SampleRate
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	if c.Protocol != "" {
		cfg.Protocol = c.Protocol
	}
	if c.ServiceName != "" {
		cfg.ServiceName = c.ServiceName
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}

// Validate checks an enabled config. A disabled one is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.Endpoint == "":
		return errors.New("endpoint is required")
	case c.Protocol != ProtocolGRPC && c.Protocol != ProtocolHTTP:
		return fmt.Errorf("protocol must be %q or %q, got %q", ProtocolGRPC, ProtocolHTTP, c.Protocol)
	case c.ServiceName == "":
		return errors.New("service name is required")
	case c.SampleRate < 0 || c.SampleRate > 1:
		return fmt.Errorf("sample rate must be in [0, 1], got %v", c.SampleRate)
	case c.MetricsInterval < 0:
		return errors.New("metrics interval must not be negative")
	case c.ShutdownTimeout <= 0:
		return errors.New("shutdown timeout must be positive")
	case c.Insecure && !isLoopback(c.Endpoint):
		return fmt.Errorf("plaintext export to %s refused; only loopback endpoints may be insecure", c.Endpoint)
	}
	return nil
}

// hostPort strips an http:// or https:// prefix.
func hostPort(endpoint string) string {
	if i := strings.Index(endpoint, "://"); i >= 0 {
		return endpoint[i+3:]
	}
	return endpoint
}

func isLoopback(endpoint string) bool {
	host := hostPort(endpoint)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
