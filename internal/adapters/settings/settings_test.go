package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/forge/internal/adapters/settings"
)

func writeBuildFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, settings.Filename), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write build file: %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	cwd := writeBuildFile(t, `version: "1"
settings:
  cacheDir: .cache/forge
  remoteCacheUrl: http://cache.internal:8080
  ignore: ["node_modules"]
rules: {}
`)

	s, err := settings.Load(cwd, settings.Filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CacheDir != ".cache/forge" {
		t.Fatalf("unexpected cache dir %q", s.CacheDir)
	}
	if s.RemoteCacheURL != "http://cache.internal:8080" {
		t.Fatalf("unexpected remote cache URL %q", s.RemoteCacheURL)
	}
	if len(s.Ignore) != 1 || s.Ignore[0] != "node_modules" {
		t.Fatalf("unexpected ignore list %v", s.Ignore)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cwd := writeBuildFile(t, "rules: {}\n")

	s, err := settings.Load(cwd, settings.Filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CacheDir != settings.DefaultCacheDir {
		t.Fatalf("unexpected cache dir %q", s.CacheDir)
	}
	if s.RemoteCacheURL != "" {
		t.Fatalf("unexpected remote cache URL %q", s.RemoteCacheURL)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s, err := settings.Load(t.TempDir(), settings.Filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CacheDir != settings.DefaultCacheDir {
		t.Fatalf("unexpected cache dir %q", s.CacheDir)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	cwd := writeBuildFile(t, "settings: [not, a, map]\n")

	if _, err := settings.Load(cwd, settings.Filename); err == nil {
		t.Fatal("expected a parse error")
	}
}
