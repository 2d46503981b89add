package srv

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/jypelle/oledclock/internal/asset"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/jypelle/oledclock/internal/srv/device"
	"github.com/jypelle/oledclock/internal/srv/event"
	"github.com/jypelle/oledclock/internal/version"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

type ServerApp struct {
	*config.ServerConfig

	opener        device.Opener
	assets        asset.Store
	assetsCloser  io.Closer
	displayDevice *device.Display
	clockDevice   *device.Clock
	buttonsDevice *device.Buttons
	apiDevice     *device.Api

	eventLoopAskDone chan bool
	eventLoopDone    chan bool

	// HaltChannel receives a request to stop the server and halt the system.
	HaltChannel chan bool
}

// BusConfig is the I²C wiring of the panel described by the params.
func BusConfig(sc *config.ServerConfig) device.BusConfig {
	return device.BusConfig{
		Bus:     sc.I2CParam.Bus,
		SCLPin:  sc.I2CParam.SCLPin,
		SDAPin:  sc.I2CParam.SDAPin,
		Bitrate: physic.Frequency(sc.I2CParam.Bitrate) * physic.Hertz,
		Width:   sc.DisplayParam.Width,
		Height:  sc.DisplayParam.Height,
	}
}

func NewServerApp(serverConfig *config.ServerConfig, opener device.Opener) (*ServerApp, error) {
	logrus.Debugf("Creation of oledclock server %s ...", version.AppVersion.String())

	app := &ServerApp{
		ServerConfig:     serverConfig,
		opener:           opener,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		HaltChannel:      make(chan bool, 1),
	}

	var err error
	app.assets, app.assetsCloser, err = OpenAssetStore(serverConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to open asset store: %w", err)
	}

	app.clockDevice = device.NewClock(serverConfig.RefreshInterval())

	buttonPins := map[event.ButtonId]string{}
	if serverConfig.ButtonParam.DisplaySwitch != "" {
		buttonPins[event.DISPLAY_SWITCH_BUTTON] = serverConfig.ButtonParam.DisplaySwitch
	}
	app.buttonsDevice = device.NewButtons(buttonPins)

	if serverConfig.ApiParam.Enabled {
		app.apiDevice = device.NewApi(serverConfig)
	}

	logrus.Debugln("Server created")

	return app, nil
}

func (s *ServerApp) displayOptions() ([]device.Option, error) {
	opts := []device.Option{device.WithTimeY(s.DisplayParam.TimeY)}
	if s.DisplayParam.FontFile != "" {
		face, err := loadFace(s.DisplayParam.FontFile, s.DisplayParam.FontSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, device.WithFace(face))
	}
	return opts, nil
}

// Start connects the display, draws the first screen and then starts the
// periodic refresh.
func (s *ServerApp) Start(ctx context.Context) error {
	logrus.Printf("Starting oledclock server ...")

	opts, err := s.displayOptions()
	if err != nil {
		return err
	}

	logrus.Printf("Starting devices ...")

	// Start display device
	logrus.Infof("Start display device")
	s.displayDevice, err = device.Connect(ctx, s.opener, s.assets, opts...).Wait(ctx)
	if err != nil {
		return fmt.Errorf("unable to initialize oled display: %w", err)
	}
	if err = s.displayDevice.SetContrast(s.Contrast()); err != nil {
		logrus.Warnf("Unable to set contrast: %v", err)
	}

	// Display first screen
	if err = s.displayDevice.Update(); err != nil {
		logrus.Warnf("Unable to draw display: %v", err)
	}
	if !s.DisplayOn() {
		if err = s.displayDevice.Halt(); err != nil {
			logrus.Warnf("Unable to switch display off: %v", err)
		}
	}

	// Start event loop
	go s.eventLoop()

	// Start clock device
	s.clockDevice.Start()

	// Start buttons device
	if err = s.buttonsDevice.Start(); err != nil {
		logrus.Warnf("Buttons disabled: %v", err)
	}

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start(s.displayDevice)
	}

	return nil
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping oledclock server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop buttons device
	s.buttonsDevice.StopSendingEvent()

	// Stop clock device
	s.clockDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop display device
	logrus.Infof("Stop display device")
	if err := s.displayDevice.Close(); err != nil {
		logrus.Warnf("Unable to close display: %v", err)
	}

	if s.assetsCloser != nil {
		s.assetsCloser.Close()
	}

	// Flush config backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Errorf("Unable to halt the system: %v", err)
		}
	}
}
