// Package storage provides the panel's file store (the SD card mount) and the
// one-shot capacity report shown at start-up.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Well-known paths on the storage mount.
const (
	DefaultRoot      = "/sdcard"
	DefaultImagePath = "/sdcard/1.jpg"
	DefaultTestPath  = "/sdcard/Test.txt"
)

// ErrNotExist reports a missing file.
var ErrNotExist = errors.New("storage: file does not exist")

// Store reads and writes small text files.
type Store interface {
	Exists(path string) bool
	WriteText(path, text string) error
	// ReadText reads at most limit bytes (all of the file when limit <= 0).
	ReadText(path string, limit int) (string, error)
}

// FileStore implements Store on an afero filesystem.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore creates a store on fs.
func NewFileStore(fs afero.Fs) *FileStore {
	return &FileStore{fs: fs}
}

// NewOSStore creates a store on the host filesystem.
func NewOSStore() *FileStore {
	return NewFileStore(afero.NewOsFs())
}

// Fs returns the underlying filesystem.
func (s *FileStore) Fs() afero.Fs {
	return s.fs
}

// Exists reports whether path exists.
func (s *FileStore) Exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// WriteText replaces the content of path with text.
func (s *FileStore) WriteText(path, text string) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for write: %w", path, mapErr(err))
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadText reads the content of path, truncated to limit bytes when limit > 0.
func (s *FileStore) ReadText(path string, limit int) (string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, mapErr(err))
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, int64(limit))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func mapErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}
