// Package vault is a flat, byte-oriented key/value store over a filesystem.
// The records core uses exactly one key, holding the serialized engine
// image; the package still keeps the contract generic.
//
// Writes go to a sibling temp file which is then renamed over the current
// one, so readers always recover a complete value even if the process dies
// mid-write. A failed Put leaves the previous value intact.
package vault

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrQuotaExceeded is returned by Put when the value is larger than the
// vault's configured per-value quota.
var ErrQuotaExceeded = errors.New("vault: value exceeds storage quota")

// Vault stores byte values under flat string keys inside one directory.
type Vault struct {
	fs    afero.Fs
	dir   string
	quota int64 // max bytes per value; 0 means unlimited
}

// New returns a Vault rooted at dir, creating it if needed. Use
// afero.NewOsFs for durable storage and afero.NewMemMapFs in tests.
func New(fs afero.Fs, dir string) (*Vault, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, errors.WithMessage(err, "creating vault directory")
	}
	return &Vault{fs: fs, dir: dir}, nil
}

// SetQuota caps the size of any single value. Put returns ErrQuotaExceeded
// for oversized writes, leaving the stored value untouched.
func (v *Vault) SetQuota(n int64) { v.quota = n }

// Get reads the value under key. The second return is false when the key
// is absent, which is not an error.
func (v *Vault) Get(key string) ([]byte, bool, error) {
	path, err := v.path(key, "")
	if err != nil {
		return nil, false, err
	}

	f, err := v.fs.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.WithMessage(err, "opening value file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, errors.WithMessage(err, "reading value file")
	}
	return data, true, nil
}

// Put writes the value under key, overwriting any prior value. The write
// lands in a temp file first and is renamed into place.
func (v *Vault) Put(key string, data []byte) error {
	if v.quota > 0 && int64(len(data)) > v.quota {
		return errors.WithMessagef(ErrQuotaExceeded, "%d bytes", len(data))
	}

	current, err := v.path(key, "")
	if err != nil {
		return err
	}
	next, err := v.path(key, ".next")
	if err != nil {
		return err
	}

	f, err := v.fs.OpenFile(next, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.WithMessage(err, "creating value file")
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return errors.WithMessage(err, "writing value file")
	}
	if err = f.Close(); err != nil {
		return errors.WithMessage(err, "closing value file")
	}
	if err = v.fs.Rename(next, current); err != nil {
		return errors.WithMessage(err, "renaming next => current")
	}
	return nil
}

// Delete removes the value under key. Deleting an absent key is a no-op.
func (v *Vault) Delete(key string) error {
	path, err := v.path(key, "")
	if err != nil {
		return err
	}
	if err := v.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithMessage(err, "removing value file")
	}
	return nil
}

func (v *Vault) path(key, suffix string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") {
		return "", errors.Errorf("vault: invalid key %q", key)
	}
	return filepath.Join(v.dir, key+suffix), nil
}
