package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	version = ""
	assert.NotEmpty(t, GetVersion())

	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", GetVersion())
}

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := version, gitCommit, buildDate
	t.Cleanup(func() { version, gitCommit, buildDate = origVersion, origCommit, origDate })

	tests := []struct {
		name   string
		commit string
		date   string
		want   string
	}{
		{name: "version only", want: "v1.0.0"},
		{name: "with commit", commit: "abc123", want: "v1.0.0 (commit abc123)"},
		{name: "with commit and date", commit: "abc123", date: "2025-06-01", want: "v1.0.0 (commit abc123, built 2025-06-01)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, gitCommit, buildDate = "v1.0.0", tt.commit, tt.date
			assert.Equal(t, tt.want, String())
		})
	}
}
