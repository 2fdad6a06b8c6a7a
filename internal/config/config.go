// Package config loads the weddingcheck configuration file (weddingcheck.yaml
// or weddingcheck.json) and applies environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "weddingcheck.yaml"

// Defaults mirror the backend's local development setup.
const (
	DefaultBaseURL  = "http://localhost:8001/api"
	DefaultUsername = "aaaaaa"
	DefaultPassword = "aaaaaa"
	DefaultTimeout  = 10 * time.Second
	DefaultTwinPort = 8001
)

// Environment variables that override file values.
const (
	EnvConfig   = "WEDDINGCHECK_CONFIG"
	EnvBaseURL  = "WEDDINGCHECK_BASE_URL"
	EnvUsername = "WEDDINGCHECK_USERNAME"
	EnvPassword = "WEDDINGCHECK_PASSWORD"
	EnvTimeout  = "WEDDINGCHECK_TIMEOUT"
)

// Duration is a time.Duration that reads "10s" style strings from YAML and JSON.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	return d.parse(s)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Twin holds settings for the local in-memory backend twin.
type Twin struct {
	Port      int    `yaml:"port" json:"port"`
	JWTSecret string `yaml:"jwt_secret" json:"jwt_secret,omitempty"`
	SeedFile  string `yaml:"seed_file" json:"seed_file,omitempty"`
}

// Config is the parsed weddingcheck configuration.
type Config struct {
	BaseURL    string   `yaml:"base_url" json:"base_url"`
	Username   string   `yaml:"username" json:"username"`
	Password   string   `yaml:"password" json:"password"`
	Timeout    Duration `yaml:"timeout" json:"timeout"`
	Report     string   `yaml:"report" json:"report,omitempty"`
	Extensions string   `yaml:"extensions" json:"extensions,omitempty"`
	Verbose    bool     `yaml:"verbose" json:"verbose"`
	Twin       Twin     `yaml:"twin" json:"twin"`
}

// RequestTimeout returns the per-request timeout as a time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout)
}

// Default returns a config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Username: DefaultUsername,
		Password: DefaultPassword,
		Timeout:  Duration(DefaultTimeout),
		Twin:     Twin{Port: DefaultTwinPort},
	}
}

// ResolvePath returns the config path to use. An explicit path wins, then
// $WEDDINGCHECK_CONFIG, then ./weddingcheck.yaml. If the resolved path is the
// default YAML and a weddingcheck.json exists alongside it, the JSON file is preferred.
func ResolvePath(explicit string) string {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultFile
	}
	base := filepath.Base(path)
	if base == "weddingcheck.yaml" || base == "weddingcheck.yml" {
		jsonPath := filepath.Join(filepath.Dir(path), "weddingcheck.json")
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath
		}
	}
	return path
}

// Load resolves the config path, reads it, and applies environment overrides.
// A missing file is not an error: defaults are used.
func Load(explicit string) (*Config, error) {
	cfg, err := LoadFrom(ResolvePath(explicit))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads a config file, detecting the format by extension.
// Values absent from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (expected .json, .yaml, or .yml)", ext)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from WEDDINGCHECK_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if err := c.Timeout.parse(v); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
	}
	return nil
}

// Validate checks that the config can drive a verification run.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: host is required", c.BaseURL)
	}
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout))
	}
	return nil
}

// Save writes the config to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
