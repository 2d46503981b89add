package asset

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jypelle/oledclock/internal/images"
)

type countingStorage struct {
	Storage
	reads int
}

func (s *countingStorage) ReadArrayBuffer(name string) ([]byte, error) {
	s.reads++
	return s.Storage.ReadArrayBuffer(name)
}

func testIndex() Index {
	return Index{
		"wifi":  {Width: 16, Height: 16},
		"odd":   {Width: 10, Height: 3},
		"short": {Width: 16, Height: 16},
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"wifi":  {Data: make([]byte, 32)},
		"odd":   {Data: []byte{0xff, 0xc0, 0x80, 0x00, 0x00, 0x40}},
		"short": {Data: make([]byte, 8)},
	}
}

func TestFlashStoreImage(t *testing.T) {
	store := NewFlashStore(testIndex(), NewFSStorage(testFS()))

	for _, name := range []string{"wifi", "odd"} {
		t.Run(name, func(t *testing.T) {
			img, err := store.Image(name)
			if err != nil {
				t.Fatal(err)
			}
			desc := testIndex()[name]
			if img.Width != desc.Width || img.Height != desc.Height {
				t.Errorf("expected %dx%d, got %dx%d", desc.Width, desc.Height, img.Width, img.Height)
			}
			if img.Bpp != 1 {
				t.Errorf("expected bpp 1, got %d", img.Bpp)
			}
			if img.Transparent == nil || *img.Transparent != 0 {
				t.Errorf("expected transparent value 0, got %v", img.Transparent)
			}
			if want := (desc.Width + 7) / 8 * desc.Height; len(img.Buffer) != want {
				t.Errorf("expected %d bytes, got %d", want, len(img.Buffer))
			}
		})
	}
}

func TestFlashStoreErrors(t *testing.T) {
	store := NewFlashStore(testIndex(), NewFSStorage(testFS()))

	if _, err := store.Image("missing"); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
	if _, err := store.Image("short"); !errors.Is(err, ErrShortPayload) {
		t.Errorf("expected ErrShortPayload, got %v", err)
	}
}

func TestFlashStoreReadsEveryCall(t *testing.T) {
	storage := &countingStorage{Storage: NewFSStorage(testFS())}
	store := NewFlashStore(testIndex(), storage)

	for i := 0; i < 3; i++ {
		if _, err := store.Image("wifi"); err != nil {
			t.Fatal(err)
		}
	}
	if storage.reads != 3 {
		t.Errorf("expected 3 storage reads, got %d", storage.reads)
	}
}

func TestCachedStore(t *testing.T) {
	storage := &countingStorage{Storage: NewFSStorage(testFS())}
	store := NewCachedStore(NewFlashStore(testIndex(), storage))

	a, err := store.Image("wifi")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Image("wifi")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the cached image")
	}
	if storage.reads != 1 {
		t.Errorf("expected 1 storage read, got %d", storage.reads)
	}
	if _, err = store.Image("missing"); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
}

func TestDefaultAssets(t *testing.T) {
	index, err := LoadIndex(images.IndexFile)
	if err != nil {
		t.Fatal(err)
	}
	store := NewFlashStore(index, NewFSStorage(images.Flash))
	for name := range index {
		if _, err := store.Image(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestDirStorage(t *testing.T) {
	storage, err := NewDirStorage(filepath.Join(t.TempDir(), "flash"))
	if err != nil {
		t.Fatal(err)
	}
	if err = storage.Write("wifi", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	data, err := storage.ReadArrayBuffer("wifi")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 || data[2] != 3 {
		t.Errorf("unexpected payload %v", data)
	}
	if err = storage.Write("a-name-that-is-far-too-long-for-flash", nil); !errors.Is(err, ErrBadName) {
		t.Errorf("expected ErrBadName, got %v", err)
	}
}

func TestSQLiteStorage(t *testing.T) {
	storage, err := OpenSQLiteStorage(filepath.Join(t.TempDir(), "flash.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer storage.Close()

	if _, err = storage.ReadArrayBuffer("wifi"); err == nil {
		t.Error("expected an error for a missing key")
	}
	for _, payload := range [][]byte{{1, 2}, {3, 4, 5}} {
		if err = storage.Write("wifi", payload); err != nil {
			t.Fatal(err)
		}
	}
	data, err := storage.ReadArrayBuffer("wifi")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 || data[0] != 3 {
		t.Errorf("unexpected payload %v", data)
	}
}

func TestPack(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 2))
	src.SetGray(0, 0, color.Gray{Y: 255})
	src.SetGray(9, 0, color.Gray{Y: 255})
	src.SetGray(8, 1, color.Gray{Y: 255})

	img := Pack(src)
	if err := img.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x80, 0x40, 0x00, 0x80}
	for i, b := range want {
		if img.Buffer[i] != b {
			t.Errorf("byte %d: expected %#02x, got %#02x", i, b, img.Buffer[i])
		}
	}
	if img.Value(9, 0) != 1 || img.Value(1, 0) != 0 {
		t.Error("unexpected pixel values")
	}
}

func TestLoadIndex(t *testing.T) {
	index, err := LoadIndex([]byte("wifi:\n  width: 16\n  height: 8\n"))
	if err != nil {
		t.Fatal(err)
	}
	if index["wifi"] != (Descriptor{Width: 16, Height: 8}) {
		t.Errorf("unexpected descriptor %+v", index["wifi"])
	}
	if _, err = LoadIndex([]byte("\"\":\n  width: 1\n")); !errors.Is(err, ErrBadName) {
		t.Errorf("expected ErrBadName, got %v", err)
	}
}

func TestFallbackStorage(t *testing.T) {
	primary, err := NewDirStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err = primary.Write("odd", []byte{1}); err != nil {
		t.Fatal(err)
	}
	storage := NewFallbackStorage(primary, NewFSStorage(testFS()))

	data, err := storage.ReadArrayBuffer("odd")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 {
		t.Errorf("expected the primary payload, got %v", data)
	}
	data, err = storage.ReadArrayBuffer("wifi")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 32 {
		t.Errorf("expected the fallback payload, got %d bytes", len(data))
	}
}

func TestCheckName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"wifi", true},
		{"wifi.v2", true},
		{"", false},
		{"a-name-that-is-far-too-long-for-flash", false},
		{".", false},
		{"..", false},
		{"../escaped", false},
		{"sub/wifi", false},
		{`..\escaped`, false},
	}
	for _, tt := range tests {
		err := CheckName(tt.name)
		if tt.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrBadName) {
			t.Errorf("%q: expected ErrBadName, got %v", tt.name, err)
		}
	}
}

func TestDirStorageStaysInside(t *testing.T) {
	root := t.TempDir()
	storage, err := NewDirStorage(filepath.Join(root, "flash"))
	if err != nil {
		t.Fatal(err)
	}
	if err = storage.Write("../escaped", []byte{1}); !errors.Is(err, ErrBadName) {
		t.Errorf("expected ErrBadName, got %v", err)
	}
	if _, err = os.Stat(filepath.Join(root, "escaped")); !os.IsNotExist(err) {
		t.Errorf("expected nothing written outside the storage folder, got %v", err)
	}
	if _, err = storage.ReadArrayBuffer("../flash"); !errors.Is(err, ErrBadName) {
		t.Errorf("expected ErrBadName on read, got %v", err)
	}
}
