package srv

import (
	"fmt"
	"io"
	"os"

	"github.com/jypelle/oledclock/internal/asset"
	"github.com/jypelle/oledclock/internal/images"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/sirupsen/logrus"
)

// loadIndex merges the flashed asset index over the embedded one.
func loadIndex(sc *config.ServerConfig) (asset.Index, error) {
	index, err := asset.LoadIndex(images.IndexFile)
	if err != nil {
		return nil, err
	}
	if sc.StorageParam.Driver == config.EmbeddedStorage {
		return index, nil
	}

	rawIndex, err := os.ReadFile(sc.GetCompleteIndexFilename())
	if os.IsNotExist(err) {
		return index, nil
	}
	if err != nil {
		return nil, err
	}
	flashed, err := asset.LoadIndex(rawIndex)
	if err != nil {
		return nil, err
	}
	return index.Merge(flashed), nil
}

// openWritableStorage opens the configured flash storage. The returned
// closer may be nil.
func openWritableStorage(sc *config.ServerConfig) (asset.WritableStorage, io.Closer, error) {
	switch sc.StorageParam.Driver {
	case config.DirStorage:
		storage, err := asset.NewDirStorage(sc.GetCompleteStoragePath())
		return storage, nil, err
	case config.SQLiteStorage:
		storage, err := asset.OpenSQLiteStorage(sc.GetCompleteStoragePath())
		if err != nil {
			return nil, nil, err
		}
		return storage, storage, nil
	case config.EmbeddedStorage:
		return nil, nil, fmt.Errorf("%s storage is read-only", config.EmbeddedStorage)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", sc.StorageParam.Driver)
	}
}

// OpenAssetStore builds the asset store described by the storage params.
func OpenAssetStore(sc *config.ServerConfig) (asset.Store, io.Closer, error) {
	index, err := loadIndex(sc)
	if err != nil {
		return nil, nil, err
	}

	var (
		storage asset.Storage = asset.NewFSStorage(images.Flash)
		closer  io.Closer
	)
	if sc.StorageParam.Driver != config.EmbeddedStorage {
		var flash asset.WritableStorage
		flash, closer, err = openWritableStorage(sc)
		if err != nil {
			return nil, nil, err
		}
		storage = asset.NewFallbackStorage(flash, storage)
	}
	logrus.Debugf("Asset storage: %s (%d assets)", sc.StorageParam.Driver, len(index))

	var store asset.Store = asset.NewFlashStore(index, storage)
	if sc.StorageParam.Cache {
		store = asset.NewCachedStore(store)
	}
	return store, closer, nil
}
