// Package version exposes build metadata injected at link time:
//
//	go build -ldflags "-X github.com/rshade/ghgledger/pkg/version.version=v1.2.3"
package version

import (
	"fmt"
	"runtime/debug"
)

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = ""
	gitCommit = ""
	buildDate = ""
)

const devVersion = "0.0.0-dev"

// GetVersion returns the release version, the module version recorded by
// go install, or a development placeholder.
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string { return gitCommit }

// GetBuildDate returns the build timestamp, if known.
func GetBuildDate() string { return buildDate }

// String renders the version line printed by --version.
func String() string {
	s := GetVersion()
	if gitCommit != "" {
		s += fmt.Sprintf(" (commit %s", gitCommit)
		if buildDate != "" {
			s += ", built " + buildDate
		}
		s += ")"
	}
	return s
}
