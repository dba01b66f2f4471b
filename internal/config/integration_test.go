package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalConfig(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	assert.NotNil(t, cfg)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)

	assert.Same(t, cfg, GetGlobalConfig())

	ResetGlobalConfigForTest()
	assert.NotSame(t, cfg, GetGlobalConfig())

	custom := Default(t.TempDir())
	SetGlobalConfig(custom)
	assert.Same(t, custom, GetGlobalConfig())
}

func TestConfigGetters(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	cfg.Output.DefaultFormat = "json"
	cfg.Output.Precision = 4
	cfg.Store.Company = "Acme"
	cfg.Logging.Level = "debug"

	assert.Equal(t, "json", GetDefaultOutputFormat())
	assert.Equal(t, 4, GetOutputPrecision())
	assert.Equal(t, "Acme", GetCompany())
	assert.Equal(t, "debug", GetLoggingConfig().Level)
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv(EnvHome, "/custom/home")
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", dir)

	t.Setenv(EnvHome, "")
	dir, err = GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, ".ghgledger", filepath.Base(dir))
}

func TestEnsureSubDirs(t *testing.T) {
	home := filepath.Join(t.TempDir(), "ghg")
	t.Setenv(EnvHome, home)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := Default(home)
	cfg.Logging.File = filepath.Join(home, "logs", "ghgledger.log")
	SetGlobalConfig(cfg)

	require.NoError(t, EnsureSubDirs())
	for _, dir := range []string{home, cfg.Cache.Directory, filepath.Join(home, "logs")} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureLogDirError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := Default(t.TempDir())
	cfg.Logging.File = filepath.Join(blocker, "sub", "app.log")
	SetGlobalConfig(cfg)

	require.Error(t, EnsureLogDir())
}
