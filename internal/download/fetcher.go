// Package download retrieves single remote resources to local paths.
//
// A destination is either fully present or absent: bodies are streamed to a
// temporary file next to the destination and renamed into place only after the
// whole body has been written.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
)

// New wraps httpClient so that redirects are surfaced to the fetcher instead
// of being followed by net/http. A nil client gets http.DefaultClient's settings.
func New(httpClient *http.Client, maxRedirects int, logger *zap.Logger) *Fetcher {
	var c http.Client
	if httpClient != nil {
		c = *httpClient
	}
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	return &Fetcher{
		httpClient:   &c,
		maxRedirects: maxRedirects,
		logger:       logging.OrNop(logger),
	}
}

// Fetch streams rawURL to dest, creating parent directories as needed.
// Concurrent calls for the same dest share one transfer; only the first
// caller's onProgress is invoked.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string, onProgress ProgressFunc) error {
	_, err, _ := f.inflight.Do(dest, func() (any, error) {
		return nil, f.fetch(ctx, rawURL, dest, onProgress)
	})
	return err
}

// DecodeJSON fetches rawURL and decodes the body into v without touching disk.
func (f *Fetcher) DecodeJSON(ctx context.Context, rawURL string, v any) error {
	resp, final, err := f.open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &FetchError{URL: final, Kind: KindTransport, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

// Requests returns how many HTTP requests this fetcher has issued, redirect
// hops included.
func (f *Fetcher) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, dest string, onProgress ProgressFunc) error {
	resp, final, err := f.open(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := writeAtomic(resp, dest, onProgress); err != nil {
		return &FetchError{URL: final, Kind: KindTransport, Err: err}
	}

	f.logger.Debug("fetched",
		zap.String("url", final),
		zap.String("dest", dest),
		zap.Int64("size", resp.ContentLength),
	)
	return nil
}

// open follows redirects by hand, up to maxRedirects hops, and returns the
// first 200 response together with the URL that produced it.
func (f *Fetcher) open(ctx context.Context, rawURL string) (*http.Response, string, error) {
	current := rawURL

	for hop := 0; ; hop++ {
		resp, err := f.get(ctx, current)
		if err != nil {
			return nil, current, &FetchError{URL: current, Kind: KindTransport, Err: err}
		}

		if isRedirect(resp.StatusCode) {
			loc, err := resp.Location()
			drain(resp)
			if err != nil {
				return nil, current, &FetchError{URL: current, Kind: KindTransport, Err: fmt.Errorf("redirect without location: %w", err)}
			}
			if hop >= f.maxRedirects {
				return nil, current, &FetchError{URL: rawURL, Kind: KindTransport, Err: ErrTooManyRedirects}
			}

			f.logger.Debug("following redirect",
				zap.String("from", current),
				zap.String("to", loc.String()),
				zap.Int("status", resp.StatusCode),
			)
			current = loc.String()
			continue
		}

		if resp.StatusCode != http.StatusOK {
			drain(resp)
			return nil, current, &FetchError{URL: current, Kind: KindStatus, StatusCode: resp.StatusCode}
		}

		return resp, current, nil
	}
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	f.mu.Lock()
	f.requests++
	f.mu.Unlock()

	return f.httpClient.Do(req)
}

func writeAtomic(resp *http.Response, dest string, onProgress ProgressFunc) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	body := io.Reader(resp.Body)
	if onProgress != nil && resp.ContentLength > 0 {
		body = &progressReader{reader: resp.Body, total: resp.ContentLength, onProg: onProgress}
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write body: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move into place: %w", err)
	}

	return nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
