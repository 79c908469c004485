package blob

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// FS stores objects as files under a root directory. Keys map to relative
// paths; intermediate directories are created on demand.
type FS struct {
	root string
}

// NewFS returns a filesystem store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "blob: create output dir")
	}
	return &FS{root: dir}, nil
}

func (s *FS) Driver() Driver { return DriverFilesystem }

// Put writes body to the key's file through a temp file and rename.
func (s *FS) Put(ctx context.Context, key string, body []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "blob: put")
	}
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return eris.Wrapf(err, "blob: create dir for %s", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "blob: create %s", key)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "blob: write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "blob: close %s", key)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return eris.Wrapf(err, "blob: rename %s", key)
	}
	return nil
}

func (s *FS) Location(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}
