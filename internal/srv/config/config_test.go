package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "oledclock")

	sc, err := LoadServerConfig(dir, false, true)
	if err != nil {
		t.Fatal(err)
	}
	defer sc.FlushSave()
	if sc.I2CParam.Bitrate != 400000 {
		t.Errorf("expected bitrate 400000, got %d", sc.I2CParam.Bitrate)
	}
	if sc.DisplayParam.Width != 128 || sc.DisplayParam.Height != 64 {
		t.Errorf("unexpected panel size %dx%d", sc.DisplayParam.Width, sc.DisplayParam.Height)
	}
	if sc.RefreshInterval() != time.Second {
		t.Errorf("expected 1s refresh interval, got %s", sc.RefreshInterval())
	}
	if sc.StorageParam.Driver != EmbeddedStorage {
		t.Errorf("expected embedded storage, got %q", sc.StorageParam.Driver)
	}
	if _, err = os.Stat(sc.GetCompleteParamFilename()); err != nil {
		t.Errorf("expected a default param file: %v", err)
	}
	if !sc.DisplayOn() {
		t.Error("expected the display to default on")
	}
	if h := sc.ApiParam.Hostnames; len(h) != 2 || h[0] != "localhost" || h[1] != "127.0.0.1" {
		t.Errorf("unexpected certificate hostnames %v", h)
	}
}

func TestLoadServerConfigOverride(t *testing.T) {
	dir := t.TempDir()
	param := []byte("i2c:\n  scl_pin: GPIO5\nstorage:\n  driver: sqlite\nrefresh_interval_ms: 500\n")
	if err := os.WriteFile(filepath.Join(dir, paramFilename), param, 0660); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadServerConfig(dir, false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer sc.FlushSave()
	if sc.I2CParam.SCLPin != "GPIO5" {
		t.Errorf("expected GPIO5, got %q", sc.I2CParam.SCLPin)
	}
	if sc.I2CParam.SDAPin != "GPIO2" {
		t.Errorf("expected default GPIO2, got %q", sc.I2CParam.SDAPin)
	}
	if sc.RefreshInterval() != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", sc.RefreshInterval())
	}
	if want := filepath.Join(dir, flashDatabaseFilename); sc.GetCompleteStoragePath() != want {
		t.Errorf("expected %s, got %s", want, sc.GetCompleteStoragePath())
	}
}

func TestServerStateFlushSave(t *testing.T) {
	filename := filepath.Join(t.TempDir(), stateFilename)

	ss, err := NewServerState(filename, 1)
	if err != nil {
		t.Fatal(err)
	}
	ss.SetContrast(200)
	ss.SetDisplayOn(false)
	ss.FlushSave()

	reloaded, err := NewServerState(filename, 1)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Contrast() != 200 {
		t.Errorf("expected contrast 200, got %d", reloaded.Contrast())
	}
	if reloaded.DisplayOn() {
		t.Error("expected the display to be off")
	}
}
