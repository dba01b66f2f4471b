package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgledger/internal/cli"
	"github.com/rshade/ghgledger/internal/config"
	"github.com/rshade/ghgledger/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "ghgledger", root.Use)
		assert.True(t, root.HasSubCommands())
	})
}

func TestRun(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvProject, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Cleanup(config.ResetGlobalConfigForTest)

	require.NoError(t, run(context.Background(), []string{"factors", "units", "--fuel-name", "Natural gas"}))
	require.Error(t, run(context.Background(), []string{"calc", "teleport"}))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", want: 0},
		{name: "error returns 1", err: errors.New("boom"), want: 1},
		{name: "wrapped error returns 1", err: errors.Join(errors.New("outer"), errors.New("inner")), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
