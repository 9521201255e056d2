package download

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxRedirects = 10
	UserAgent           = "blue-launcher/0.1"
)

// ErrTooManyRedirects is wrapped by a FetchError when a redirect chain
// exceeds the configured hop limit.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrorKind separates network failures from servers answering with an error status.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	}
	return "unknown"
}

// FetchError describes a failed retrieval. StatusCode is set for KindStatus.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a FetchError carrying the given HTTP status.
func IsStatus(err error, code int) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindStatus && fe.StatusCode == code
}

// ProgressFunc receives a download percentage in [0, 100]. Values never decrease
// within a single fetch.
type ProgressFunc func(percent int)

type Fetcher struct {
	httpClient   *http.Client
	maxRedirects int
	logger       *zap.Logger

	// inflight collapses concurrent fetches of the same destination path.
	inflight singleflight.Group

	mu       sync.Mutex
	requests int
}
