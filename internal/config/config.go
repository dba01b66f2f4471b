// Package config loads ghgledger settings from ~/.ghgledger/config.yaml, an
// optional project overlay and environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rshade/ghgledger/internal/engine/cache"
	"github.com/rshade/ghgledger/internal/factors"
)

// Store drivers.
const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

const (
	configFileName   = "config.yaml"
	defaultPrecision = 2
	maxPrecision     = 6
)

// Environment overrides.
const (
	EnvHome      = "GHGLEDGER_HOME"
	EnvLogLevel  = "GHGLEDGER_LOG_LEVEL"
	EnvLogFormat = "GHGLEDGER_LOG_FORMAT"
	EnvCompany   = "GHGLEDGER_COMPANY"
	EnvProject   = "GHGLEDGER_PROJECT_DIR"
)

// Configuration errors.
var (
	ErrUnknownKey  = errors.New("unknown configuration key")
	ErrReadOnlyKey = errors.New("configuration key is read-only")
	ErrInvalid     = errors.New("invalid configuration")
)

// Config is the complete configuration.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Store     StoreConfig     `yaml:"store"`
	Factors   FactorsConfig   `yaml:"factors"`
	Cache     CacheConfig     `yaml:"cache"`
	Reporting ReportingConfig `yaml:"reporting"`

	// path is where Save writes; empty for in-memory configs.
	path string
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls diagnostics.
type LoggingConfig struct {
	Level  string      `yaml:"level"`
	Format string      `yaml:"format"`
	File   string      `yaml:"file,omitempty"`
	Audit  AuditConfig `yaml:"audit"`
}

// AuditConfig controls the per-command audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

// StoreConfig selects where activity records live.
type StoreConfig struct {
	Driver  string `yaml:"driver"`
	Path    string `yaml:"path"`
	Company string `yaml:"company,omitempty"`
}

// FactorsConfig points at an emission-factor table. Empty uses the built-in
// table.
type FactorsConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CacheConfig controls the memo cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
}

// ReportingConfig holds report defaults. GridFactor and
// AvgTransportConstant mirror system constants and cannot be changed here;
// a factor table may override them.
type ReportingConfig struct {
	DefaultWindow        string  `yaml:"default_window"`
	GridFactor           float64 `yaml:"grid_factor"`
	AvgTransportConstant float64 `yaml:"avg_transport_constant"`
}

//nolint:gochecknoglobals // Read-only lookup table.
var readOnlyKeys = map[string]bool{
	"reporting.grid_factor":            true,
	"reporting.avg_transport_constant": true,
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Output: OutputConfig{DefaultFormat: "table", Precision: defaultPrecision},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Audit:  AuditConfig{Enabled: false, File: filepath.Join(dir, "logs", "audit.log")},
		},
		Store: StoreConfig{Driver: DriverYAML, Path: filepath.Join(dir, "records.yaml")},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: cache.DefaultTTLSeconds,
			Directory:  filepath.Join(dir, "cache"),
		},
		Reporting: ReportingConfig{
			DefaultWindow:        "month",
			GridFactor:           factors.DefaultGridFactor,
			AvgTransportConstant: factors.DefaultAvgTransportConstant,
		},
		path: filepath.Join(dir, configFileName),
	}
}

// New returns the user configuration: defaults, then the config file if
// present, then environment overrides. A malformed file leaves the defaults
// in place; use Load to see the error.
func New() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = ".ghgledger"
	}
	cfg, loadErr := Load(filepath.Join(dir, configFileName))
	if loadErr != nil {
		cfg = Default(dir)
		cfg.ApplyEnv()
	}
	return cfg
}

// Load reads path over the defaults for its directory and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.pinConstants()
	cfg.ApplyEnv()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file Save writes to.
func (c *Config) Path() string { return c.path }

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) { c.path = path }

// ApplyEnv applies GHGLEDGER_* overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvCompany); v != "" {
		c.Store.Company = v
	}
	c.Cache.Enabled = cache.EnabledFromEnv(c.Cache.Enabled)
	c.Cache.TTLSeconds = cache.TTLFromEnv(c.Cache.TTLSeconds)
	if v := cache.DirFromEnv(); v != "" {
		c.Cache.Directory = v
	}
}

// Validate reports settings the CLI cannot honour.
func (c *Config) Validate() error {
	var errs []error
	switch c.Output.DefaultFormat {
	case "table", "json", "ndjson":
	default:
		errs = append(errs, fmt.Errorf("output.default_format %q (want table, json or ndjson)", c.Output.DefaultFormat))
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("output.precision %d (want 0..%d)", c.Output.Precision, maxPrecision))
	}
	switch c.Store.Driver {
	case DriverYAML, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q (want yaml or sqlite)", c.Store.Driver))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is empty"))
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			errs = append(errs, fmt.Errorf("cache.ttl_seconds: %w", err))
		}
	}
	switch strings.ToLower(c.Reporting.DefaultWindow) {
	case "day", "week", "month", "year":
	default:
		errs = append(errs, fmt.Errorf("reporting.default_window %q (want day, week, month or year)", c.Reporting.DefaultWindow))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Save writes the configuration to Path, creating its directory.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.path, err)
	}
	return nil
}

// Get returns the value at a dotted key such as "store.driver" or
// "logging.audit.enabled". A section name returns the whole section.
func (c *Config) Get(key string) (any, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if cur, ok = m[part]; !ok {
			if isLeafKey(key) {
				return "", nil
			}
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return cur, nil
}

// Set parses value as YAML and stores it at a dotted leaf key. The result
// must still validate; on error c is unchanged.
func (c *Config) Set(key, value string) error {
	if readOnlyKeys[key] {
		return fmt.Errorf("%w: %s", ErrReadOnlyKey, key)
	}
	if !isLeafKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	tree, err := c.tree()
	if err != nil {
		return err
	}
	var parsed any
	if err = yaml.Unmarshal([]byte(value), &parsed); err != nil || parsed == nil {
		parsed = value
	}

	parts := strings.Split(key, ".")
	m := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[part] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = parsed

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	next := *c
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&next); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	if err = next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// List returns every leaf setting keyed by dotted name, with values
// formatted for display.
func (c *Config) List() (map[string]string, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	flatten("", tree, out)
	return out, nil
}

// Keys returns the keys of List in sorted order.
func Keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, v any, out map[string]string) {
	m, ok := v.(map[string]any)
	if !ok {
		out[prefix] = formatValue(v)
		return
	}
	for k, child := range m {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		flatten(name, child, out)
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// tree returns the configuration as nested maps.
func (c *Config) tree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	tree := map[string]any{}
	if err = yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return tree, nil
}

// isLeafKey reports whether key names a single setting, including ones
// omitted from YAML output while empty.
func isLeafKey(key string) bool {
	sample := Default("")
	sample.Logging.File = "-"
	sample.Store.Company = "-"
	sample.Factors.Path = "-"
	all, err := sample.List()
	if err != nil {
		return false
	}
	_, ok := all[key]
	return ok
}

// pinConstants restores the read-only reporting values.
func (c *Config) pinConstants() {
	c.Reporting.GridFactor = factors.DefaultGridFactor
	c.Reporting.AvgTransportConstant = factors.DefaultAvgTransportConstant
}
