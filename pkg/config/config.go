// Package config resolves windstyle settings. Values are layered: built-in
// defaults, then an optional YAML file, then environment variables, then
// command-line flags that were set explicitly.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/windstyle/pkg/parser"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds server and loader settings.
type Config struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	SourcesDir    string   `yaml:"sourcesDir"`
	MaxSourceSize int      `yaml:"maxSourceSize"`
	Workers       int      `yaml:"workers"`
	Extensions    []string `yaml:"extensions"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          8787,
		MaxSourceSize: parser.MaxSourceSize,
		Workers:       4,
		Extensions:    []string{".wss"},
	}
}

// ValidationError reports a setting with an unusable value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty), and the environment as seen through getenv. A nil
// getenv reads the process environment.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile overlays the fields present in a YAML file. Unknown keys are
// rejected.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("SOURCES_DIR"); v != "" {
		c.SourcesDir = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Port},
		{"MAX_SOURCE_SIZE", &c.MaxSourceSize},
		{"WORKERS", &c.Workers},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.key, v, err)
		}
		*e.dst = n
	}
	return nil
}

// ApplyFlags overrides settings with flags the user set explicitly. Flags
// that are not defined on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed && err == nil
	}

	if changed("host") {
		c.Host, err = fs.GetString("host")
	}
	if changed("port") {
		c.Port, err = fs.GetInt("port")
	}
	if changed("sources-dir") {
		c.SourcesDir, err = fs.GetString("sources-dir")
	}
	if changed("max-source-size") {
		c.MaxSourceSize, err = fs.GetInt("max-source-size")
	}
	if changed("workers") {
		c.Workers, err = fs.GetInt("workers")
	}
	return err
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return &ValidationError{Field: "port", Reason: fmt.Sprintf("%d is outside 1-65535", c.Port)}
	case c.Workers < 1:
		return &ValidationError{Field: "workers", Reason: "must be at least 1"}
	case c.MaxSourceSize < 1:
		return &ValidationError{Field: "maxSourceSize", Reason: "must be positive"}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ValidationError{Field: "extensions", Reason: fmt.Sprintf("%q must start with '.'", ext)}
		}
	}
	return nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
