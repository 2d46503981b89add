package srv

import (
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"

	"github.com/jypelle/oledclock/internal/asset"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/sirupsen/logrus"
)

// FlashAsset packs the image read from r into a 1bpp bitmap, writes it to
// the configured storage under name and records it in the asset index.
func FlashAsset(sc *config.ServerConfig, name string, r io.Reader) error {
	if err := asset.CheckName(name); err != nil {
		return err
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", name, err)
	}
	img := asset.Pack(src)

	storage, closer, err := openWritableStorage(sc)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	logrus.Infof("Writing %s (%dx%d, %d bytes)", name, img.Width, img.Height, len(img.Buffer))
	if err = storage.Write(name, img.Buffer); err != nil {
		return err
	}

	index := asset.Index{}
	rawIndex, err := os.ReadFile(sc.GetCompleteIndexFilename())
	if err == nil {
		if index, err = asset.LoadIndex(rawIndex); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err = index.Add(name, asset.Descriptor{Width: img.Width, Height: img.Height}); err != nil {
		return err
	}
	rawIndex, err = index.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(sc.GetCompleteIndexFilename(), rawIndex, 0660)
}
