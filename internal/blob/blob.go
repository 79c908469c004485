// Package blob writes report files to their destination: a local directory
// or an S3 bucket.
package blob

import (
	"context"
	"path"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/defano/chicago-oasis-data/internal/config"
)

// Driver names a Store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// Store receives whole report files. Put overwrites any existing object.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// Location renders where key is stored, for logs and the run ledger.
	Location(key string) string
}

// New opens the store selected by configuration.
func New(ctx context.Context, cfg config.OutputConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFS(cfg.Dir)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, eris.Errorf("blob: unknown driver %q", cfg.Driver)
	}
}

// cleanKey rejects keys that are empty, absolute or escape the root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", eris.New("blob: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", eris.Errorf("blob: invalid key %q", key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", eris.Errorf("blob: key %q escapes root", key)
	}
	return clean, nil
}
