package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const gitignoreHeader = `# ghgledger project data (generated by "ghgledger config init")
# config.yaml and a YAML record ledger are tracked; databases, cache and logs are not.
`

// GitignoreEntries lists the paths under the config's directory that should
// stay out of version control. A YAML ledger is tracked; its temporary write
// file is not. A SQLite store is ignored along with its journal files. Paths
// configured outside the directory are skipped.
func GitignoreEntries(cfg *Config) []string {
	dir := filepath.Dir(cfg.Path())
	var entries []string
	add := func(path string, isDir bool) {
		rel, ok := relativeTo(dir, path)
		if !ok {
			return
		}
		if isDir {
			rel += "/"
		}
		for _, e := range entries {
			if e == rel {
				return
			}
		}
		entries = append(entries, rel)
	}

	switch cfg.Store.Driver {
	case DriverSQLite:
		add(cfg.Store.Path, false)
		for _, suffix := range []string{"-journal", "-wal", "-shm"} {
			add(cfg.Store.Path+suffix, false)
		}
	default:
		add(cfg.Store.Path+".tmp", false)
	}
	add(cfg.Cache.Directory, true)
	if cfg.Logging.Audit.File != "" {
		add(filepath.Dir(cfg.Logging.Audit.File), true)
	}
	if cfg.Logging.File != "" {
		add(cfg.Logging.File, false)
	}
	return append(entries, "*.log")
}

// GitignoreContent renders the .gitignore written next to cfg.
func GitignoreContent(cfg *Config) string {
	var b strings.Builder
	b.WriteString(gitignoreHeader)
	for _, e := range GitignoreEntries(cfg) {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return b.String()
}

// EnsureGitignore writes a .gitignore in the directory holding cfg unless
// one exists. It reports whether a file was created and never overwrites.
func EnsureGitignore(cfg *Config) (bool, error) {
	dir := filepath.Dir(cfg.Path())
	gitignorePath := filepath.Join(dir, ".gitignore")

	_, err := os.Stat(gitignorePath)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking .gitignore at %s: %w", gitignorePath, err)
	}

	if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, mkdirErr)
	}

	//nolint:gosec // .gitignore must be world-readable (0644).
	if writeErr := os.WriteFile(gitignorePath, []byte(GitignoreContent(cfg)), 0o644); writeErr != nil {
		return false, fmt.Errorf("writing .gitignore at %s: %w", gitignorePath, writeErr)
	}
	return true, nil
}

// relativeTo returns path relative to dir in slash form, or false when path
// is empty or outside dir.
func relativeTo(dir, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
