package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/download"
	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
)

// Fetcher is the slice of download.Fetcher the pipeline depends on.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, dest string, onProgress download.ProgressFunc) error
	DecodeJSON(ctx context.Context, rawURL string, v any) error
}

var _ Fetcher = (*download.Fetcher)(nil)

type Resolver struct {
	fetcher     Fetcher
	layout      Layout
	manifestURL string
	logger      *zap.Logger
}

func NewResolver(layout Layout, manifestURL string, fetcher Fetcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		fetcher:     fetcher,
		layout:      layout,
		manifestURL: manifestURL,
		logger:      logging.OrNop(logger),
	}
}

// Manifest downloads the catalog. It is never cached: the live manifest is
// the authority on which versions exist.
func (r *Resolver) Manifest(ctx context.Context) (*VersionManifest, error) {
	var m VersionManifest
	if err := r.fetcher.DecodeJSON(ctx, r.manifestURL, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch version manifest: %w", err)
	}
	return &m, nil
}

// Versions lists manifest entries, optionally only those of one type
// ("release", "snapshot", "old_beta", "old_alpha").
func (r *Resolver) Versions(ctx context.Context, kind string) ([]VersionManifestEntry, error) {
	m, err := r.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	if kind == "" {
		return m.Versions, nil
	}

	out := make([]VersionManifestEntry, 0, len(m.Versions))
	for _, v := range m.Versions {
		if v.Type == kind {
			out = append(out, v)
		}
	}
	return out, nil
}

// Resolve looks id up in the live manifest and returns its descriptor. A
// descriptor already on disk is used as-is and never re-validated.
func (r *Resolver) Resolve(ctx context.Context, id string) (*VersionDescriptor, error) {
	m, err := r.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	var entry *VersionManifestEntry
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			entry = &m.Versions[i]
			break
		}
	}
	if entry == nil {
		return nil, &ResolutionError{VersionID: id, Err: ErrVersionNotFound}
	}

	path := r.layout.DescriptorPath(id)
	if !exists(path) {
		r.logger.Info("downloading version descriptor", zap.String("version", id))
		if err := r.fetcher.Fetch(ctx, entry.URL, path, nil); err != nil {
			return nil, &ResolutionError{VersionID: id, Err: err}
		}
	}

	return readDescriptor(path)
}

func readDescriptor(path string) (*VersionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read version descriptor: %w", err)
	}

	var d VersionDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse version descriptor %s: %w", path, err)
	}
	return &d, nil
}
