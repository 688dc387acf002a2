package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved directory layout for a running instance.
type Paths struct {
	BaseDir    string
	UploadsDir string
	ExportsDir string
	DBPath     string
}

// ResolvePaths turns the configured layout into absolute directories.
func (c *Config) ResolvePaths() (*Paths, error) {
	base, err := filepath.Abs(c.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}

	p := &Paths{
		BaseDir:    base,
		UploadsDir: resolveUnder(base, c.Paths.UploadsDir),
		ExportsDir: resolveUnder(base, c.Paths.ExportsDir),
		DBPath:     resolveUnder(base, c.Inventory.DBPath),
	}
	return p, nil
}

// resolveUnder joins dir under base unless it is already absolute.
func resolveUnder(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates the upload and export directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.UploadsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the full path of an export artifact.
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// UploadPath returns the full path of a stored upload.
func (p *Paths) UploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}
