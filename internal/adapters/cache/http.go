package cache

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactCache = (*HTTPCache)(nil)

// requestTimeout bounds every fetch and every individual async store upload.
const requestTimeout = 15 * time.Second

// maxConcurrentStores bounds the upload goroutines so a burst of builds
// cannot open unbounded connections.
const maxConcurrentStores = 4

// HTTPCache is the remote backend. Fetches are synchronous and bounded by
// requestTimeout; stores are packed synchronously (so the bytes are a
// consistent snapshot of the output) and uploaded in the background so the
// build never waits on the network. Close flushes pending uploads.
type HTTPCache struct {
	base   *url.URL
	root   string
	client *http.Client
	logger ports.Logger

	group    *errgroup.Group
	closedMu sync.Mutex
	closed   bool
}

// NewHTTPCache creates an HTTPCache for the given base URL, e.g.
// "http://cache.internal:8080".
func NewHTTPCache(baseURL, root string, logger ports.Logger) (*HTTPCache, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid cache URL"), "url", baseURL)
	}

	group := &errgroup.Group{}
	group.SetLimit(maxConcurrentStores)

	return &HTTPCache{
		base:   base,
		root:   root,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
		group:  group,
	}, nil
}

func (c *HTTPCache) artifactURL(key domain.RuleKey) string {
	return c.base.JoinPath("artifacts", "key", key.String()).String()
}

// Fetch downloads the artifact for key and unpacks it. Network trouble
// degrades to an error result which the tiered cache treats as a miss.
func (c *HTTPCache) Fetch(ctx context.Context, key domain.RuleKey, outputPath string) domain.CacheResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.artifactURL(key), nil)
	if err != nil {
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.Wrap(err, "failed to build cache request")}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.With(zerr.Wrap(err, "cache fetch failed"), "key", key.String())}
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to unpack
	case http.StatusNotFound:
		return domain.CacheResult{Kind: domain.CacheMiss}
	default:
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.With(zerr.New("unexpected cache response"), "status", resp.StatusCode)}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.Wrap(err, "failed to download artifact")}
	}

	meta, err := unpack(bytes.NewReader(buf.Bytes()), int64(buf.Len()), c.root, outputPath)
	if err != nil {
		// Treat an artifact that does not unpack like a miss and rebuild.
		return domain.CacheResult{Kind: domain.CacheMiss, Err: err}
	}
	return domain.CacheResult{Kind: domain.CacheHit, Metadata: meta}
}

// Store packs the output now and uploads it in the background. Upload
// failures are logged and dropped; the build result stands either way.
func (c *HTTPCache) Store(_ context.Context, key domain.RuleKey, meta domain.ArtifactMetadata, outputPath string) error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return zerr.New("cache already closed")
	}
	c.closedMu.Unlock()

	tmp, err := os.CreateTemp("", "forge-upload-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create upload temp file")
	}
	tmpName := tmp.Name()

	if err := pack(tmp, meta, c.root, outputPath); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to finish upload temp file")
	}

	c.group.Go(func() error {
		defer os.Remove(tmpName) //nolint:errcheck // Temp file cleanup
		if err := c.upload(key, tmpName); err != nil {
			c.logger.Warn("cache store failed for " + key.String() + ": " + err.Error())
		}
		// Upload failures never fail the flush.
		return nil
	})
	return nil
}

func (c *HTTPCache) upload(key domain.RuleKey, path string) error {
	f, err := os.Open(path) //nolint:gosec // Our own temp file
	if err != nil {
		return zerr.Wrap(err, "failed to reopen upload file")
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.artifactURL(key), f)
	if err != nil {
		return zerr.Wrap(err, "failed to build upload request")
	}
	req.Header.Set("Content-Type", "application/zip")

	resp, err := c.client.Do(req)
	if err != nil {
		return zerr.Wrap(err, "cache upload failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode >= 300 {
		return zerr.With(zerr.New("unexpected upload response"), "status", resp.StatusCode)
	}
	return nil
}

// Close waits for pending uploads, bounded by ctx. After Close returns, new
// stores are rejected.
func (c *HTTPCache) Close(ctx context.Context) error {
	c.closedMu.Lock()
	c.closed = true
	c.closedMu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = c.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return zerr.Wrap(ctx.Err(), "timed out flushing cache stores")
	}
}
