package config

import (
	_ "embed"
	"time"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

// Storage drivers.
const (
	EmbeddedStorage = "embedded"
	DirStorage      = "dir"
	SQLiteStorage   = "sqlite"
)

type ServerParam struct {
	I2CParam          I2CParam     `yaml:"i2c"`
	DisplayParam      DisplayParam `yaml:"display"`
	RefreshIntervalMs int64        `yaml:"refresh_interval_ms"`
	StorageParam      StorageParam `yaml:"storage"`
	ButtonParam       ButtonParam  `yaml:"button"`
	ApiParam          ApiParam     `yaml:"api"`
}

type I2CParam struct {
	Bus     string `yaml:"bus"`
	SCLPin  string `yaml:"scl_pin"`
	SDAPin  string `yaml:"sda_pin"`
	Bitrate int64  `yaml:"bitrate"`
}

type DisplayParam struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Contrast uint8   `yaml:"contrast"`
	TimeY    int     `yaml:"time_y"`
	FontFile string  `yaml:"font_file"`
	FontSize float64 `yaml:"font_size"`
}

type StorageParam struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	IndexFile string `yaml:"index_file"`
	Cache     bool   `yaml:"cache"`
}

type ButtonParam struct {
	DisplaySwitch string `yaml:"display_switch"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`

	// Hostnames and addresses of the self-signed certificate
	Hostnames []string `yaml:"hostnames"`
}

func (p *ServerParam) RefreshInterval() time.Duration {
	if p.RefreshIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(p.RefreshIntervalMs) * time.Millisecond
}
