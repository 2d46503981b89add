package images

import (
	"embed"
	"io/fs"

	"github.com/sirupsen/logrus"
)

// IndexFile describes every payload shipped in Flash.
//
//go:embed index.yaml
var IndexFile []byte

//go:embed flash
var flashFiles embed.FS

// Flash holds the default bitmap payloads, keyed by asset name.
var Flash fs.FS

func init() {
	var err error
	Flash, err = fs.Sub(flashFiles, "flash")
	if err != nil {
		logrus.Panicf("Can't load default assets: %v", err)
	}
}
