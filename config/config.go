// Package config loads the INI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	DefaultAppName       = "NativeScreenshot"
	DefaultServerAddress = "localhost:12000"
	DefaultRecentSize    = 64
)

type AppConfig struct {
	Name string
}

type StorageConfig struct {
	// Dir is the shared storage root; screenshots go to Dir/<app name>.
	Dir string
}

type SurfaceConfig struct {
	Type    string
	Display int
	File    string
}

type PermissionsConfig struct {
	RequireGrant bool
}

type MediaConfig struct {
	// Database is the SQLite media index. Empty disables it.
	Database string
	Recent   int
}

type ServerConfig struct {
	Listen string
	CORS   bool
}

type LogConfig struct {
	Verbose bool
}

type Config struct {
	App         AppConfig
	Storage     StorageConfig
	Surface     SurfaceConfig
	Permissions PermissionsConfig
	Media       MediaConfig
	Server      ServerConfig
	Log         LogConfig
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App:     AppConfig{Name: DefaultAppName},
		Surface: SurfaceConfig{Type: "display"},
		Media: MediaConfig{
			Database: filepath.Join(Dir(), "media.db"),
			Recent:   DefaultRecentSize,
		},
		Server: ServerConfig{Listen: DefaultServerAddress},
	}
}

// Dir is ~/.nativescreenshot.
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".nativescreenshot")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.ini")
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := cfg.apply(file); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) apply(file *ini.File) error {
	var err error

	app := file.Section("app")
	c.App.Name = app.Key("name").MustString(c.App.Name)

	c.Storage.Dir = expandHome(file.Section("storage").Key("dir").MustString(c.Storage.Dir))

	surface := file.Section("surface")
	c.Surface.Type = surface.Key("type").MustString(c.Surface.Type)
	c.Surface.File = expandHome(surface.Key("file").MustString(c.Surface.File))
	if surface.HasKey("display") {
		if c.Surface.Display, err = surface.Key("display").Int(); err != nil {
			return fmt.Errorf("surface.display: %w", err)
		}
	}

	if perms := file.Section("permissions"); perms.HasKey("require_grant") {
		if c.Permissions.RequireGrant, err = perms.Key("require_grant").Bool(); err != nil {
			return fmt.Errorf("permissions.require_grant: %w", err)
		}
	}

	media := file.Section("media")
	if media.HasKey("database") {
		c.Media.Database = expandHome(media.Key("database").String())
	}
	if media.HasKey("recent") {
		if c.Media.Recent, err = media.Key("recent").Int(); err != nil {
			return fmt.Errorf("media.recent: %w", err)
		}
	}

	server := file.Section("server")
	c.Server.Listen = server.Key("listen").MustString(c.Server.Listen)
	if server.HasKey("cors") {
		if c.Server.CORS, err = server.Key("cors").Bool(); err != nil {
			return fmt.Errorf("server.cors: %w", err)
		}
	}

	if log := file.Section("log"); log.HasKey("verbose") {
		if c.Log.Verbose, err = log.Key("verbose").Bool(); err != nil {
			return fmt.Errorf("log.verbose: %w", err)
		}
	}

	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}
	return path
}
