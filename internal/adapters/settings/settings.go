// Package settings reads the project-wide settings section of the build
// file. It is a leaf adapter: the filesystem, watcher, and cache adapters
// consume it without pulling in the full build file loader.
package settings

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Filename is the build file looked up in the project root.
const Filename = "forge.yaml"

// DefaultCacheDir is used when the settings section does not name one.
const DefaultCacheDir = ".forge/cache"

// Settings is the resolved settings section with defaults applied.
type Settings struct {
	// CacheDir is the local artifact cache directory, relative to the
	// project root unless absolute.
	CacheDir string
	// RemoteCacheURL is the base URL of the remote artifact cache. Empty
	// disables the remote tier.
	RemoteCacheURL string
	// Ignore lists directory names excluded from file hashing and watching.
	Ignore []string
}

// DTO mirrors the settings section of the build file.
type DTO struct {
	CacheDir       string   `yaml:"cacheDir"`
	RemoteCacheURL string   `yaml:"remoteCacheUrl"`
	Ignore         []string `yaml:"ignore"`
}

// Resolve applies defaults to a decoded settings section.
func (d DTO) Resolve() Settings {
	s := Settings{
		CacheDir:       d.CacheDir,
		RemoteCacheURL: d.RemoteCacheURL,
		Ignore:         d.Ignore,
	}
	if s.CacheDir == "" {
		s.CacheDir = DefaultCacheDir
	}
	return s
}

// Load reads only the settings section of the build file in cwd, with
// defaults applied. A missing build file yields the defaults, so commands
// that do not need the rule graph still work outside a project.
func Load(cwd, filename string) (Settings, error) {
	data, err := os.ReadFile(filepath.Join(cwd, filename)) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DTO{}.Resolve(), nil
		}
		return Settings{}, zerr.Wrap(err, "failed to read build file")
	}

	var file struct {
		Settings DTO `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, zerr.Wrap(err, "failed to parse build file")
	}
	return file.Settings.Resolve(), nil
}
