package codec

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sandeepkv93/eventd/internal/store"
)

// ReadFile decodes the events file at path. A missing file yields an empty
// Result and no error.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, nil
		}
		return Result{}, &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	res, err := Decode(f)
	if err != nil {
		return Result{}, &StorageError{Op: "read", Path: path, Err: err}
	}
	return res, nil
}

// WriteFile replaces path with data atomically. The parent directory is
// created when missing.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StorageError{Op: op, Path: path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Marshal encodes the store into a byte slice ready for WriteFile.
func Marshal(s *store.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
