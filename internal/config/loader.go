package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1 << 20

	// EnvPrefix is the prefix for environment overrides.
	EnvPrefix = "LEXISUM_"
)

// defaultsYAML seeds koanf before the file and environment layers so that an
// explicit zero (e.g. textrank_weight: 0) is distinguishable from "unset".
const defaultsYAML = `
summarizer:
  cnn_prob_weight: 0.25
  textrank_weight: 0.35
  tfidf_weight: 0.30
  position_weight: 0.10
  use_embeddings: false
  embedding_model_name: sentence-transformers/all-MiniLM-L6-v2
embeddings:
  provider: fastembed
  base_url: http://localhost:8080
server:
  host: localhost
  port: 9191
  shutdown_timeout: 10s
  rate_limit: 20
logging:
  level: info
  format: json
  otel: false
telemetry:
  enabled: false
  endpoint: localhost:4317
  protocol: grpc
  insecure: true
  service_name: lexisum
  sample_rate: 1.0
`

// LoadWithFile layers built-in defaults, the YAML file at configPath and
// LEXISUM_* environment variables, later layers winning, then validates the
// result. An empty configPath means ~/.config/lexisum/config.yaml; a missing
// file is skipped.
//
// The file must live under ~/.config/lexisum, /etc/lexisum or the working
// directory, be mode 0600 or 0400 and be at most 1MB.
//
// Environment keys drop the prefix and split once on "_":
//
//	LEXISUM_SUMMARIZER_TEXTRANK_WEIGHT -> summarizer.textrank_weight
//	LEXISUM_EMBEDDINGS_BASE_URL        -> embeddings.base_url
func LoadWithFile(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	if configPath == "" {
		configPath = filepath.Join(home, ".config", "lexisum", "config.yaml")
	}
	if err := checkConfigDir(configPath, home); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	file, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	layers := []struct {
		name   string
		p      koanf.Provider
		parser koanf.Parser
	}{
		{"defaults", rawbytes.Provider([]byte(defaultsYAML)), yaml.Parser()},
		{configPath, rawbytes.Provider(file), yaml.Parser()},
		{"environment", env.Provider(EnvPrefix, ".", envKey), nil},
	}
	for _, l := range layers {
		if l.name == configPath && file == nil {
			continue
		}
		if err := k.Load(l.p, l.parser); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	section, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_")
	if !ok {
		return section
	}
	return section + "." + field
}

// readConfigFile returns nil content when the file does not exist. Mode and
// size are checked on the open descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm != 0600 && perm != 0400 {
		return nil, fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return io.ReadAll(io.LimitReader(f, maxConfigFileSize))
}

// checkConfigDir resolves symlinks where the path exists and requires the
// result to sit inside one of the allowed config directories.
func checkConfigDir(path, home string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	dirs := []string{filepath.Join(home, ".config", "lexisum"), "/etc/lexisum"}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return errors.New("config file must be in ~/.config/lexisum/, /etc/lexisum/ or the working directory")
}
