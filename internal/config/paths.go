package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the application's working directories relative to a base
// directory (the executable's directory by default).
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// NewPaths builds the directory layout from configuration. Relative
// configured paths resolve against baseDir.
func NewPaths(baseDir string, cfg PathsConfig) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	return &Paths{
		BaseDir:    baseDir,
		DataDir:    resolve(cfg.DataDir),
		ReportsDir: resolve(cfg.ReportsDir),
		LogsDir:    resolve(cfg.LogsDir),
	}
}

// GetPaths resolves the layout against the running executable's directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return NewPaths(filepath.Dir(exe), cfg), nil
}

// EnsureDirectories creates all working directories that do not yet exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
