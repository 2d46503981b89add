package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jypelle/oledclock/internal/sim"
	"github.com/jypelle/oledclock/internal/srv"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/jypelle/oledclock/internal/srv/device"
	"github.com/jypelle/oledclock/internal/version"
	"github.com/sirupsen/logrus"
)

const configSuffix = "oledclock"

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of oledclock config folder")

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nA wifi icon and clock on an I2C OLED panel\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  run       Run server\n")
		fmt.Printf("  flash     Write an image to the asset storage\n")
		fmt.Printf("  version   Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	// run command
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	runCmd.Usage = func() {
		fmt.Printf("\nUsage: %s run\n", mainCommand)
		fmt.Printf("\nRun the server\n")
	}

	// flash command
	flashCmd := flag.NewFlagSet("flash", flag.ExitOnError)

	flashCmd.Usage = func() {
		fmt.Printf("\nUsage: %s flash NAME PNG_FILE\n", mainCommand)
		fmt.Printf("\nPack a PNG image into a 1bpp bitmap and store it as asset NAME\n")
	}

	// version command
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	versionCmd.Usage = func() {
		fmt.Printf("\nUsage: %s version\n", mainCommand)
		fmt.Printf("\nShow the version information\n")
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	switch flag.Arg(0) {
	case "run":
		runCmd.Parse(flag.Args()[1:])
		if runCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
			runCmd.Usage()
			os.Exit(1)
		}
	case "flash":
		flashCmd.Parse(flag.Args()[1:])
		if flashCmd.NArg() != 2 {
			fmt.Printf("\n\"%s %s\" requires exactly 2 arguments\n", mainCommand, flag.Arg(0))
			flashCmd.Usage()
			os.Exit(1)
		}
	case "version":
		versionCmd.Parse(flag.Args()[1:])
		if versionCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
			versionCmd.Usage()
			os.Exit(1)
		}
	default:
		fmt.Printf("\n%s is not an oledclock command\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}
	// endregion

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	if versionCmd.Parsed() {
		fmt.Printf("Version %s\n", version.AppVersion.String())
		return
	}

	serverConfig := config.NewServerConfig(*configDir, *debugMode, *simulationMode)

	if flashCmd.Parsed() {
		name := flashCmd.Arg(0)
		f, err := os.Open(flashCmd.Arg(1))
		if err != nil {
			logrus.Fatalf("Unable to open %s: %v", flashCmd.Arg(1), err)
		}
		defer f.Close()
		if err = srv.FlashAsset(serverConfig, name, f); err != nil {
			logrus.Fatalf("Unable to flash %s: %v", name, err)
		}
		logrus.Printf("Asset %s flashed", name)
		return
	}

	if runCmd.Parsed() {
		var opener device.Opener
		if serverConfig.SimulationMode {
			opener = sim.NewPanel(serverConfig.DisplayParam.Width, serverConfig.DisplayParam.Height).Opener()
		} else {
			opener = device.OpenSSD1306(srv.BusConfig(serverConfig))
		}

		// Create oledclock server
		serverApp, err := srv.NewServerApp(serverConfig, opener)
		if err != nil {
			logrus.Fatalf("Unable to create server: %v", err)
		}

		// Listen stop signal
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGHUP, syscall.SIGUSR1)

		// The display handshake is abandoned on the first stop signal
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = serverApp.Start(ctx)
		cancel()
		if err != nil {
			logrus.Fatalf("Unable to start server: %v", err)
		}

		halt := false
		select {
		case sig := <-ch:
			logrus.Infof("Received signal: %v", sig)
			halt = sig == syscall.SIGUSR1
		case <-serverApp.HaltChannel:
			halt = true
		}
		serverApp.Stop(halt)
	}

}
