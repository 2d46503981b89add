package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"
const indexFilename = "index.yaml"
const flashFolder = "flash"
const flashDatabaseFilename = "flash.db"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
	*ServerState
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) *ServerConfig {
	serverConfig, err := LoadServerConfig(configDir, debugMode, simulationMode)
	if err != nil {
		logrus.Fatalf("Unable to load config: %v\n", err)
	}
	return serverConfig
}

// LoadServerConfig reads the param file of configDir over the defaults,
// creating the folder and a default param file when missing.
func LoadServerConfig(configDir string, debugMode bool, simulationMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
		ServerParam:    &ServerParam{},
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				return nil, fmt.Errorf("unable to create config folder: %w", err)
			}
		} else {
			return nil, fmt.Errorf("unable to access config folder %s: %w", configDir, err)
		}
	}

	err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam)
	if err != nil {
		return nil, fmt.Errorf("unable to interpret default param file: %w", err)
	}

	// Open param file
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		// Interpret param file, keys it omits keep their default value
		err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("unable to interpret param file: %w", err)
		}
	} else if os.IsNotExist(err) {
		logrus.Infof("Create default param file")
		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}

	// Open state file
	serverConfig.ServerState, err = NewServerState(serverConfig.GetCompleteStateFilename(), serverConfig.DisplayParam.Contrast)
	if err != nil {
		return nil, err
	}

	return serverConfig, nil
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteStateFilename() string {
	return filepath.Join(sc.ConfigDir, stateFilename)
}

// GetCompleteIndexFilename is the asset index written by the flash command.
func (sc *ServerConfig) GetCompleteIndexFilename() string {
	if sc.StorageParam.IndexFile != "" {
		return sc.StorageParam.IndexFile
	}
	return filepath.Join(sc.ConfigDir, indexFilename)
}

// GetCompleteStoragePath is the folder or database holding asset payloads.
func (sc *ServerConfig) GetCompleteStoragePath() string {
	if sc.StorageParam.Path != "" {
		return sc.StorageParam.Path
	}
	if sc.StorageParam.Driver == SQLiteStorage {
		return filepath.Join(sc.ConfigDir, flashDatabaseFilename)
	}
	return filepath.Join(sc.ConfigDir, flashFolder)
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		return fmt.Errorf("unable to serialize param file: %w", err)
	}
	err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		return fmt.Errorf("unable to save param file: %w", err)
	}
	return nil
}
