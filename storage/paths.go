package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobile-next/nativescreenshot/utils"
)

const (
	// DefaultAppName is used when the host cannot tell us its label.
	DefaultAppName = "NativeScreenshot"

	filePrefix      = "native_screenshot_ext"
	timestampLayout = "20060102150405"
)

// Paths places screenshots under ExternalDir/<AppName>, falling back to ExternalDir
// itself when the per-app directory cannot be created.
type Paths struct {
	ExternalDir string
}

func NewPaths(externalDir string) *Paths {
	if externalDir == "" {
		externalDir = DefaultExternalDir()
	}
	return &Paths{ExternalDir: externalDir}
}

func (p *Paths) DestinationPath(appName string, at time.Time) string {
	name := FileName(at)

	dir := filepath.Join(p.ExternalDir, SafeAppName(appName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Verbose("cannot create %s, falling back to %s: %v", dir, p.ExternalDir, err)
		return filepath.Join(p.ExternalDir, name)
	}

	return filepath.Join(dir, name)
}

// FileName returns the screenshot file name for a capture time.
func FileName(at time.Time) string {
	return filePrefix + "-" + at.Format(timestampLayout) + ".png"
}

// SafeAppName turns an application label into a single path element.
func SafeAppName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" || name == "." || name == ".." {
		return DefaultAppName
	}

	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, name)
}

// DefaultExternalDir is the desktop counterpart of shared external storage.
func DefaultExternalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}

	pictures := filepath.Join(home, "Pictures")
	if info, err := os.Stat(pictures); err == nil && info.IsDir() {
		return pictures
	}

	return home
}
