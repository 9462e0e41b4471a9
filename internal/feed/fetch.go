package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/retry"

	appLog "pogocal/internal/log"
)

// ErrNotModifiedNoCache is returned when the server answers 304 but no
// cached body exists to reuse.
var ErrNotModifiedNoCache = errors.New("feed: 304 Not Modified but no cached body available")

// StatusError is a non-2xx feed response with no cached body to fall back on.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: unexpected status %s", e.Status)
}

// FetchResult is the outcome of one fetch.
type FetchResult struct {
	Body      []byte
	FromCache bool // body reused from disk after a 304 or a failure
}

// cacheEntry holds HTTP cache metadata for one URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads the feed with conditional requests (ETag /
// Last-Modified) and a disk cache that also serves as a fallback when the
// network or the server fails.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	attempts uint
	delay    time.Duration
	jitter   time.Duration
}

// NewFetcher creates a Fetcher caching under cacheDir. attempts bounds HTTP
// attempts per fetch; 1 disables automatic retry.
func NewFetcher(cacheDir string, attempts int) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/feed-cache"
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: cacheDir,
		attempts: uint(attempts),
		delay:    time.Second,
		jitter:   5 * time.Second,
	}
}

// Fetch retrieves rawURL, honoring the disk cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	if rawURL == "" {
		return FetchResult{}, errors.New("feed: URL is empty")
	}

	cachePath := f.cachePathForURL(rawURL)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, err
	}
	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	var (
		res     FetchResult
		lastErr error
	)
	err := retry.Do(
		func() error {
			r, err := f.fetchOnce(ctx, rawURL, cachePath, meta, cachedBody)
			if err != nil {
				lastErr = err
				return err
			}
			res = r
			return nil
		},
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.MaxDelay(time.Minute),
		retry.MaxJitter(f.jitter),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			appLog.Warn("feed fetch failed, retrying", "attempt", n+1, "url", redactURL(rawURL), "err", err)
		}),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNotModifiedNoCache)
		}),
	)
	if err == nil {
		return res, nil
	}

	// Every attempt failed; serve the last good body if there is one.
	if len(cachedBody) > 0 {
		appLog.Error("feed fetch failed, using cached body", err, "url", redactURL(rawURL))
		return FetchResult{Body: cachedBody, FromCache: true}, nil
	}
	if lastErr == nil {
		lastErr = err
	}
	return FetchResult{}, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL, cachePath string, meta cacheEntry, cachedBody []byte) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return FetchResult{}, retry.Unrecoverable(err)
	}
	if len(cachedBody) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	appLog.Info("feed fetch start", "url", redactURL(rawURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, err
		}
		newMeta := cacheEntry{
			URL:          rawURL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("feed cache save failed", err, "url", redactURL(rawURL))
		}
		appLog.Info("feed fetch success", "url", redactURL(rawURL), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{Body: body}, nil

	case resp.StatusCode == http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, ErrNotModifiedNoCache
		}
		appLog.Info("feed not modified; using cache", "url", redactURL(rawURL))
		return FetchResult{Body: cachedBody, FromCache: true}, nil

	default:
		return FetchResult{}, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
}

func (f *Fetcher) cachePathForURL(u string) string {
	sum := sha256.Sum256([]byte(u))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps scheme and host only, for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "feed://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
