package cache_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.trai.ch/forge/internal/adapters/cache"
	"go.trai.ch/forge/internal/core/domain"
)

// artifactServer is an in-memory cache peer: PUT stores the body under the
// request path, GET serves it back or 404s.
type artifactServer struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newArtifactServer() *artifactServer {
	return &artifactServer{entries: make(map[string][]byte)}
}

func (s *artifactServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.entries[r.URL.Path] = body
		w.WriteHeader(http.StatusAccepted)
	case http.MethodGet:
		body, ok := s.entries[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHTTPCache_RoundTrip(t *testing.T) {
	backend := newArtifactServer()
	server := httptest.NewServer(backend)
	defer server.Close()

	root := t.TempDir()
	remote, err := cache.NewHTTPCache(server.URL, root, permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeArtifact(t, root, "out/lib.a", "object code")

	key := domain.RuleKey{1}
	meta := domain.ArtifactMetadata{Target: "//lib:a", Success: true}
	if err := remote.Store(context.Background(), key, meta, "out/lib.a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Close flushes the background upload.
	if err := remote.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.RemoveAll(filepath.Join(root, "out")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fetcher, err := cache.NewHTTPCache(server.URL, root, permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := fetcher.Fetch(context.Background(), key, "out/lib.a")
	if res.Kind != domain.CacheHit {
		t.Fatalf("expected hit, got %v (%v)", res.Kind, res.Err)
	}
	if res.Metadata != meta {
		t.Fatalf("unexpected metadata: %+v", res.Metadata)
	}

	data, err := os.ReadFile(filepath.Join(root, "out", "lib.a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "object code" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestHTTPCache_Fetch_NotFoundIsMiss(t *testing.T) {
	server := httptest.NewServer(newArtifactServer())
	defer server.Close()

	remote, err := cache.NewHTTPCache(server.URL, t.TempDir(), permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := remote.Fetch(context.Background(), domain.RuleKey{9}, "out")
	if res.Kind != domain.CacheMiss {
		t.Fatalf("expected miss, got %v", res.Kind)
	}
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
}

func TestHTTPCache_Fetch_ServerErrorIsCacheError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	remote, err := cache.NewHTTPCache(server.URL, t.TempDir(), permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := remote.Fetch(context.Background(), domain.RuleKey{9}, "out")
	if res.Kind != domain.CacheError {
		t.Fatalf("expected cache error, got %v", res.Kind)
	}
}

func TestHTTPCache_Fetch_UnreachableIsCacheError(t *testing.T) {
	server := httptest.NewServer(newArtifactServer())
	server.Close()

	remote, err := cache.NewHTTPCache(server.URL, t.TempDir(), permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := remote.Fetch(context.Background(), domain.RuleKey{9}, "out")
	if res.Kind != domain.CacheError {
		t.Fatalf("expected cache error, got %v", res.Kind)
	}
}

func TestHTTPCache_Store_RejectedAfterClose(t *testing.T) {
	server := httptest.NewServer(newArtifactServer())
	defer server.Close()

	root := t.TempDir()
	remote, err := cache.NewHTTPCache(server.URL, root, permissiveLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := remote.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeArtifact(t, root, "out/lib.a", "object code")
	meta := domain.ArtifactMetadata{Target: "//lib:a", Success: true}
	if err := remote.Store(context.Background(), domain.RuleKey{1}, meta, "out/lib.a"); err == nil {
		t.Fatal("expected an error storing into a closed cache")
	}
}
