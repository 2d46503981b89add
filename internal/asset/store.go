package asset

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store turns an asset name into a ready to draw image.
type Store interface {
	Image(name string) (*Image, error)
}

// FlashStore reads the payload from storage on every lookup.
type FlashStore struct {
	index   Index
	storage Storage
}

func NewFlashStore(index Index, storage Storage) *FlashStore {
	return &FlashStore{index: index, storage: storage}
}

func (s *FlashStore) Image(name string) (*Image, error) {
	desc, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}

	buffer, err := s.storage.ReadArrayBuffer(name)
	if err != nil {
		return nil, fmt.Errorf("asset: unable to read %q: %w", name, err)
	}

	var transparent uint8
	img := &Image{
		Width:       desc.Width,
		Height:      desc.Height,
		Bpp:         Bpp,
		Transparent: &transparent,
		Buffer:      buffer,
	}
	if err = img.Validate(); err != nil {
		return nil, fmt.Errorf("asset %q: %w", name, err)
	}
	return img, nil
}

// CachedStore keeps every image returned by the inner store.
type CachedStore struct {
	lock   sync.RWMutex
	inner  Store
	images map[string]*Image
}

func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{inner: inner, images: make(map[string]*Image)}
}

func (s *CachedStore) Image(name string) (*Image, error) {
	s.lock.RLock()
	img, ok := s.images[name]
	s.lock.RUnlock()
	if ok {
		return img, nil
	}

	img, err := s.inner.Image(name)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Cache asset %s (%dx%d)", name, img.Width, img.Height)
	s.lock.Lock()
	s.images[name] = img
	s.lock.Unlock()
	return img, nil
}
