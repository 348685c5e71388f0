package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/invariant/internal/value"
)

// DefaultDiskRoot is the on-disk cache location when none is configured.
const DefaultDiskRoot = ".invariant/cache"

// Disk persists envelope-encoded artifacts under
// <root>/<sanitised-op>/<digest[0:2]>/<digest[2:]>. The two-character
// prefix keeps directories from growing to millions of flat entries.
type Disk struct {
	counters
	root  string
	types *value.TypeRegistry
}

// NewDisk returns a disk store rooted at root ("" means DefaultDiskRoot).
// The type registry resolves Domain payloads on read; it may be nil for
// native-only workloads.
func NewDisk(root string, types *value.TypeRegistry) (*Disk, error) {
	if root == "" {
		root = DefaultDiskRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache root %q: %w", root, err)
	}
	return &Disk{root: root, types: types}, nil
}

// Root returns the store's root directory.
func (d *Disk) Root() string { return d.root }

func (d *Disk) path(op, digest string) (string, error) {
	if len(digest) != 64 {
		return "", fmt.Errorf("invalid digest %q: want 64 hex characters, got %d", digest, len(digest))
	}
	return filepath.Join(d.root, SanitizeOp(op), digest[:2], digest[2:]), nil
}

// Exists reports whether the artifact file is present.
func (d *Disk) Exists(op, digest string) (bool, error) {
	path, err := d.path(op, digest)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get reads and decodes the artifact. A missing file is ErrNotFound; a
// present file that fails to decode is ErrCorrupt, which is fatal.
func (d *Disk) Get(op, digest string) (value.Value, error) {
	path, err := d.path(op, digest)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.miss()
		return nil, fmt.Errorf("%w: (%s, %s)", ErrNotFound, op, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact (%s, %s): %w", op, digest, err)
	}
	v, err := Unmarshal(data, d.types)
	if err != nil {
		return nil, fmt.Errorf("%w: (%s, %s) at %s: %w", ErrCorrupt, op, digest, path, err)
	}
	d.hit()
	return v, nil
}

// Put atomically persists the artifact: serialize to a sibling .tmp path,
// then rename into place. A crash mid-write leaves only the ignored .tmp.
func (d *Disk) Put(op, digest string, artifact value.Value) error {
	path, err := d.path(op, digest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	data, err := Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encoding artifact (%s, %s): %w", op, digest, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing artifact file: %w", err)
	}
	d.put()
	return nil
}
