package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/defano/chicago-oasis-data/internal/fetcher"
)

// ErrMissingColumn is returned when a source lacks a required column.
var ErrMissingColumn = eris.New("dataset: missing required column")

// Cache keeps downloaded sources in a local directory.
type Cache struct {
	dir string
	f   fetcher.Fetcher
}

// NewCache returns a cache rooted at dir that downloads through f.
func NewCache(dir string, f fetcher.Fetcher) *Cache {
	return &Cache{dir: dir, f: f}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns where a source lives on disk. Local-only sources are read
// from their configured path.
func (c *Cache) Path(s Source) string {
	if !s.Remote() {
		return s.LocalFile
	}
	return filepath.Join(c.dir, s.LocalFile)
}

func (c *Cache) etagPath(s Source) string { return c.Path(s) + ".etag" }

// Ensure makes a source available on disk and returns its path. Remote
// sources are downloaded when missing or when force is set.
func (c *Cache) Ensure(ctx context.Context, s Source, force bool) (string, error) {
	path := c.Path(s)
	if !s.Remote() {
		if _, err := os.Stat(path); err != nil {
			return "", eris.Wrapf(err, "dataset: %s: local file", s.Name)
		}
		return path, nil
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	log := zap.L().With(zap.String("component", "dataset"), zap.String("dataset", s.Name))
	log.Info("downloading dataset", zap.String("url", s.URL), zap.String("path", path))

	n, err := c.f.DownloadToFile(ctx, s.URL, path)
	if err != nil {
		return "", eris.Wrapf(err, "dataset: %s: download", s.Name)
	}
	_ = os.Remove(c.etagPath(s))

	log.Info("dataset downloaded", zap.Int64("bytes", n))
	return path, nil
}

// Refresh re-downloads a remote source only if the server reports a new
// version, using the ETag recorded by the previous refresh. It reports
// whether the local copy changed.
func (c *Cache) Refresh(ctx context.Context, s Source) (bool, error) {
	if !s.Remote() {
		return false, nil
	}
	path := c.Path(s)

	etag := ""
	if _, err := os.Stat(path); err == nil {
		if b, err := os.ReadFile(c.etagPath(s)); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newETag, changed, err := c.f.DownloadIfChanged(ctx, s.URL, etag)
	if err != nil {
		return false, eris.Wrapf(err, "dataset: %s: refresh", s.Name)
	}
	if !changed {
		zap.L().Info("dataset unchanged", zap.String("dataset", s.Name), zap.String("etag", etag))
		return false, nil
	}
	defer body.Close() //nolint:errcheck

	n, err := fetcher.WriteAtomic(path, body)
	if err != nil {
		return false, eris.Wrapf(err, "dataset: %s: write", s.Name)
	}
	if newETag != "" {
		if err := os.WriteFile(c.etagPath(s), []byte(newETag), 0o644); err != nil {
			return true, eris.Wrapf(err, "dataset: %s: write etag", s.Name)
		}
	} else {
		_ = os.Remove(c.etagPath(s))
	}

	zap.L().Info("dataset refreshed",
		zap.String("dataset", s.Name),
		zap.Int64("bytes", n),
		zap.String("etag", newETag),
	)
	return true, nil
}

// DownloadAll fetches every remote source in parallel. With force set every
// source is downloaded; otherwise each is refreshed only if it changed
// upstream.
func (c *Cache) DownloadAll(ctx context.Context, sources []Source, force bool) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return eris.Wrap(err, "dataset: create cache dir")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sources {
		if !s.Remote() {
			continue
		}
		g.Go(func() error {
			if force {
				_, err := c.Ensure(gctx, s, true)
				return err
			}
			_, err := c.Refresh(gctx, s)
			return err
		})
	}
	return g.Wait()
}
