package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfigInit flag
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig initializes the global configuration.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	GlobalConfig = New()
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration, e.g. after merging a
// project overlay.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = cfg
	globalConfigInit = cfg != nil
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetOutputPrecision returns the configured output precision.
func GetOutputPrecision() int {
	return GetGlobalConfig().Output.Precision
}

// GetCompany returns the company filter applied to record queries.
func GetCompany() string {
	return GetGlobalConfig().Store.Company
}

// EnsureConfigDir ensures the ghgledger configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir ensures the directories of the configured log and audit
// files exist.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	for _, file := range []string{cfg.Logging.File, cfg.Logging.Audit.File} {
		if file == "" {
			continue
		}
		logDir := filepath.Dir(file)
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}
	}
	return nil
}

// GetConfigDir returns the ghgledger configuration directory,
// $GHGLEDGER_HOME or ~/.ghgledger.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, projectDirName), nil
}

// EnsureSubDirs creates the configuration directory, the cache directory
// and the log directories.
func EnsureSubDirs() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	cfg := GetGlobalConfig()
	if cfg.Cache.Directory != "" {
		if err := os.MkdirAll(cfg.Cache.Directory, 0o700); err != nil {
			return fmt.Errorf("failed to create cache directory %q: %w", cfg.Cache.Directory, err)
		}
	}

	return EnsureLogDir()
}
