package device

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// DefaultBitrate is the I²C clock rate used to talk to the panel.
const DefaultBitrate = 400 * physic.KiloHertz

var ErrPinMismatch = errors.New("device: i2c bus pins do not match configuration")

// Controller is the display controller. Draw is the only call pushing pixels
// to the panel.
type Controller interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Bounds() image.Rectangle
	SetContrast(level byte) error
	Halt() error
}

// Opener runs the controller handshake.
type Opener func(ctx context.Context) (Controller, error)

// BusConfig describes the I²C wiring of the panel.
type BusConfig struct {
	// Bus name, empty for the first available bus.
	Bus    string
	SCLPin string
	SDAPin string
	// Bitrate, DefaultBitrate when zero.
	Bitrate physic.Frequency
	Width   int
	Height  int
}

// ssd1306Address is the I²C address ssd1306.NewI2C talks to.
const ssd1306Address = 0x3C

type ssd1306Controller struct {
	*ssd1306.Dev
	bus    i2c.BusCloser
	halted bool
}

func (c *ssd1306Controller) Halt() error {
	if err := c.Dev.Halt(); err != nil {
		return err
	}
	c.halted = true
	return nil
}

// SetContrast also switches a halted panel back on, unchanged frames are not
// pushed again by ssd1306.Dev so drawing alone does not wake it up.
func (c *ssd1306Controller) SetContrast(level byte) error {
	if err := c.Dev.SetContrast(level); err != nil {
		return err
	}
	if c.halted {
		dev := i2c.Dev{Bus: c.bus, Addr: ssd1306Address}
		if err := dev.Tx([]byte{0x00, 0xAF}, nil); err != nil {
			return err
		}
		c.halted = false
	}
	return nil
}

func (c *ssd1306Controller) Close() error {
	return c.bus.Close()
}

// OpenSSD1306 returns an Opener for a SSD1306 panel on an I²C bus.
func OpenSSD1306(config BusConfig) Opener {
	return func(ctx context.Context) (Controller, error) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("device: unable to load host drivers: %w", err)
		}

		bus, err := i2creg.Open(config.Bus)
		if err != nil {
			return nil, fmt.Errorf("device: unable to open i2c bus: %w", err)
		}

		if err = checkPins(bus, config); err != nil {
			bus.Close()
			return nil, err
		}

		bitrate := config.Bitrate
		if bitrate == 0 {
			bitrate = DefaultBitrate
		}
		if err = bus.SetSpeed(bitrate); err != nil {
			// Linux i2c-dev buses usually refuse to change speed at runtime.
			logrus.Warnf("Unable to set i2c bus speed to %s: %v", bitrate, err)
		}

		if err = ctx.Err(); err != nil {
			bus.Close()
			return nil, err
		}

		opts := ssd1306.DefaultOpts
		if config.Width > 0 {
			opts.W = config.Width
		}
		if config.Height > 0 {
			opts.H = config.Height
		}
		dev, err := ssd1306.NewI2C(bus, &opts)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("device: unable to initialize oled display: %w", err)
		}
		logrus.Infof("Connected %s on %s", dev, bus)

		return &ssd1306Controller{Dev: dev, bus: bus}, nil
	}
}

func checkPins(bus i2c.Bus, config BusConfig) error {
	pins, ok := bus.(i2c.Pins)
	if !ok {
		return nil
	}
	if config.SCLPin != "" && pins.SCL().Name() != config.SCLPin {
		return fmt.Errorf("%w: SCL is %s, expected %s", ErrPinMismatch, pins.SCL().Name(), config.SCLPin)
	}
	if config.SDAPin != "" && pins.SDA().Name() != config.SDAPin {
		return fmt.Errorf("%w: SDA is %s, expected %s", ErrPinMismatch, pins.SDA().Name(), config.SDAPin)
	}
	return nil
}
