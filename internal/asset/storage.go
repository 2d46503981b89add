package asset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage is the nonvolatile key-value medium holding bitmap payloads.
type Storage interface {
	ReadArrayBuffer(name string) ([]byte, error)
}

type WritableStorage interface {
	Storage
	Write(name string, data []byte) error
}

// DirStorage keeps one file per key.
type DirStorage struct {
	dir string
}

func NewDirStorage(dir string) (*DirStorage, error) {
	if err := os.MkdirAll(dir, 0770); err != nil {
		return nil, err
	}
	return &DirStorage{dir: dir}, nil
}

func (s *DirStorage) ReadArrayBuffer(name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}

func (s *DirStorage) Write(name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0660)
}

// FSStorage reads keys from a file system, typically embedded defaults.
type FSStorage struct {
	fsys fs.FS
}

func NewFSStorage(fsys fs.FS) *FSStorage {
	return &FSStorage{fsys: fsys}
}

func (s *FSStorage) ReadArrayBuffer(name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, name)
}

// FallbackStorage reads from primary and falls back on keys it lacks.
type FallbackStorage struct {
	primary  Storage
	fallback Storage
}

func NewFallbackStorage(primary, fallback Storage) *FallbackStorage {
	return &FallbackStorage{primary: primary, fallback: fallback}
}

func (s *FallbackStorage) ReadArrayBuffer(name string) ([]byte, error) {
	data, err := s.primary.ReadArrayBuffer(name)
	if errors.Is(err, fs.ErrNotExist) {
		return s.fallback.ReadArrayBuffer(name)
	}
	return data, err
}
