package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that decodes from strings like "10s" in YAML
// and environment variables. Negative values are rejected.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	switch {
	case err != nil:
		return err
	case v < 0:
		return fmt.Errorf("negative duration %q", b)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.Duration().String()), nil }

func (d Duration) Duration() time.Duration { return time.Duration(d) }

const masked = "[REDACTED]"

// Secret is a credential that prints and marshals as a mask. Use Value for
// the raw string.
type Secret string

func (s Secret) Value() string { return string(s) }

func (s Secret) IsSet() bool { return s != "" }

func (s Secret) String() string {
	if !s.IsSet() {
		return ""
	}
	return masked
}

func (s Secret) GoString() string { return "Secret(" + masked + ")" }

// MarshalText also covers encoding/json, which prefers it for string kinds.
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Secret) UnmarshalText(b []byte) error {
	*s = Secret(b)
	return nil
}
