package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
)

const DefaultWorkers = 8

// SyncResult summarises one ensure pass. Errors holds per-item failures that
// were logged and skipped rather than aborting the pass.
type SyncResult struct {
	Classpath []string
	Total     int
	Present   int
	Fetched   int
	Errors    []error
}

func (r *SyncResult) Skipped() int { return len(r.Errors) }

// Cache makes sure version content exists under the game directory. Files
// already present are never fetched or checked again.
type Cache struct {
	layout       Layout
	fetcher      Fetcher
	platform     Platform
	resourcesURL string
	workers      int
	logger       *zap.Logger
}

func NewCache(layout Layout, resourcesURL string, fetcher Fetcher, platform Platform, workers int, logger *zap.Logger) *Cache {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Cache{
		layout:       layout,
		fetcher:      fetcher,
		platform:     platform,
		resourcesURL: strings.TrimSuffix(resourcesURL, "/"),
		workers:      workers,
		logger:       logging.OrNop(logger),
	}
}

// EnsureClient fetches the client archive if missing. Unlike libraries, a
// missing client is fatal.
func (c *Cache) EnsureClient(ctx context.Context, d *VersionDescriptor, pr ProgressReporter) (string, error) {
	pr = orNop(pr)
	path := c.layout.ClientPath(d.ID)
	if exists(path) {
		return path, nil
	}

	if d.Downloads.Client.URL == "" {
		return "", fmt.Errorf("version %s has no client download", d.ID)
	}

	pr.Report(ProgressReport{Type: ProgressClient, Step: StepInit, Total: 1, Message: "Downloading client " + d.ID})
	err := c.fetcher.Fetch(ctx, d.Downloads.Client.URL, path, func(pct int) {
		pr.Report(ProgressReport{Type: ProgressClient, Step: StepPercent, Percent: pct, Total: 1})
	})
	if err != nil {
		return "", fmt.Errorf("failed to download client archive: %w", err)
	}
	pr.Report(ProgressReport{Type: ProgressClient, Step: StepDone, Current: 1, Total: 1})

	return path, nil
}

// InstallMod downloads a mod archive into the mods directory, replacing a
// file of the same name. An empty name falls back to the last element of
// the URL path; any directory part of name is dropped.
func (c *Cache) InstallMod(ctx context.Context, rawURL, name string, pr ProgressReporter) (string, error) {
	pr = orNop(pr)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid mod url %q", rawURL)
	}

	if name == "" {
		name = path.Base(u.Path)
	}
	name = filepath.Base(filepath.FromSlash(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("mod file name %q: %w", name, ErrUnsafePath)
	}

	dest := filepath.Join(c.layout.ModsPath(), name)
	c.logger.Debug("installing mod", zap.String("url", rawURL), zap.String("path", dest))

	pr.Report(ProgressReport{Type: ProgressMods, Step: StepInit, Total: 1, Message: "Downloading " + name})
	err = c.fetcher.Fetch(ctx, rawURL, dest, func(pct int) {
		pr.Report(ProgressReport{Type: ProgressMods, Step: StepPercent, Percent: pct, Total: 1})
	})
	if err != nil {
		return "", fmt.Errorf("failed to download mod %s: %w", name, err)
	}
	pr.Report(ProgressReport{Type: ProgressMods, Step: StepDone, Current: 1, Total: 1})

	return dest, nil
}

// Mods lists the file names in the mods directory. A missing directory is
// an empty list.
func (c *Cache) Mods() ([]string, error) {
	entries, err := os.ReadDir(c.layout.ModsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mods directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasSuffix(e.Name(), ".part") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

type fetchJob struct {
	name string
	url  string
	path string
}

// EnsureLibraries fetches every applicable library that is not on disk and
// returns the classpath in descriptor order. A library that fails to download
// is logged and left off the classpath.
func (c *Cache) EnsureLibraries(ctx context.Context, d *VersionDescriptor, pr ProgressReporter) (*SyncResult, error) {
	res := &SyncResult{}
	var paths []string
	var jobs []fetchJob
	seen := make(map[string]bool, len(d.Libraries))

	for _, lib := range d.Libraries {
		if !lib.AppliesTo(c.platform) {
			c.logger.Debug("library excluded by rules", zap.String("library", lib.Name))
			continue
		}

		art := lib.Downloads.Artifact
		if art == nil || art.Path == "" || art.URL == "" {
			c.logger.Debug("library has no artifact", zap.String("library", lib.Name))
			continue
		}

		path, err := c.layout.SafeLibraryPath(art.Path)
		if err != nil {
			c.logger.Warn("rejecting library", zap.String("library", lib.Name), zap.Error(err))
			res.Total++
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", lib.Name, err))
			continue
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)

		res.Total++
		if exists(path) {
			res.Present++
			continue
		}
		jobs = append(jobs, fetchJob{name: lib.Name, url: art.URL, path: path})
	}

	failed, err := c.run(ctx, ProgressLibraries, jobs, res, pr)
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if !failed[p] {
			res.Classpath = append(res.Classpath, p)
		}
	}
	return res, nil
}

// EnsureAssets fetches the asset index when missing, then every object it
// references that is not on disk. Objects are content-addressed, so each
// hash is fetched once no matter how many names point at it.
func (c *Cache) EnsureAssets(ctx context.Context, d *VersionDescriptor, pr ProgressReporter) (*SyncResult, error) {
	ref := d.AssetIndex
	if ref.ID == "" || ref.URL == "" {
		return &SyncResult{}, nil
	}

	indexPath := c.layout.AssetIndexPath(ref.ID)
	if !exists(indexPath) {
		if err := c.fetcher.Fetch(ctx, ref.URL, indexPath, nil); err != nil {
			return nil, fmt.Errorf("failed to download asset index %s: %w", ref.ID, err)
		}
	}

	index, err := readAssetIndex(indexPath)
	if err != nil {
		return nil, err
	}

	var rejected []error
	hashes := make([]string, 0, len(index.Objects))
	unique := make(map[string]bool, len(index.Objects))
	for name, obj := range index.Objects {
		if !ValidAssetHash(obj.Hash) {
			c.logger.Warn("rejecting asset with malformed hash", zap.String("asset", name), zap.String("hash", obj.Hash))
			rejected = append(rejected, fmt.Errorf("%s: hash %q: %w", name, obj.Hash, ErrUnsafePath))
			continue
		}
		if !unique[obj.Hash] {
			unique[obj.Hash] = true
			hashes = append(hashes, obj.Hash)
		}
	}
	sort.Strings(hashes)

	res := &SyncResult{Total: len(hashes) + len(rejected), Errors: rejected}
	var jobs []fetchJob
	for _, h := range hashes {
		path := c.layout.AssetObjectPath(h)
		if exists(path) {
			res.Present++
			continue
		}
		jobs = append(jobs, fetchJob{
			name: h,
			url:  fmt.Sprintf("%s/%s/%s", c.resourcesURL, h[:2], h),
			path: path,
		})
	}

	if _, err := c.run(ctx, ProgressAssets, jobs, res, pr); err != nil {
		return nil, err
	}
	return res, nil
}

// run downloads jobs on a bounded pool. Per-job failures are recorded in res
// and in the returned set of failed paths; only cancellation stops the pass.
func (c *Cache) run(ctx context.Context, kind ProgressType, jobs []fetchJob, res *SyncResult, pr ProgressReporter) (map[string]bool, error) {
	pr = orNop(pr)
	failed := make(map[string]bool)
	if len(jobs) == 0 {
		return failed, nil
	}

	pr.Report(ProgressReport{Type: kind, Step: StepInit, Total: len(jobs)})

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			err := c.fetcher.Fetch(gctx, job.url, job.path, nil)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()

			done++
			if err != nil {
				c.logger.Warn("skipping download",
					zap.String("kind", string(kind)),
					zap.String("name", job.name),
					zap.String("path", job.path),
					zap.Error(err),
				)
				failed[job.path] = true
				res.Errors = append(res.Errors, fmt.Errorf("%s: %w", job.name, err))
			} else {
				res.Fetched++
			}
			pr.Report(ProgressReport{Type: kind, Step: StepFetch, Current: done, Total: len(jobs), Message: job.name})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	pr.Report(ProgressReport{Type: kind, Step: StepDone, Current: done, Total: len(jobs)})

	return failed, nil
}

func readAssetIndex(path string) (*AssetIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset index: %w", err)
	}

	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse asset index %s: %w", path, err)
	}
	return &idx, nil
}
