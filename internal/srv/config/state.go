package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const saveDelay = 10 * time.Second

// ServerState holds the runtime settings changed through the api or the
// buttons. Writes are batched and saved after saveDelay.
type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string, defaultContrast uint8) (*ServerState, error) {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := os.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to interpret state file: %w", err)
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		serverState.SetContrast(defaultContrast)
		serverState.SetDisplayOn(true)
	}

	return serverState, nil
}

func (ss *ServerState) Contrast() uint8 {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.Contrast
}

func (ss *ServerState) SetContrast(contrast uint8) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.Contrast = contrast
	ss.scheduleSave()
}

func (ss *ServerState) DisplayOn() bool {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return !ss.serverStateConfig.DisplayOff
}

func (ss *ServerState) SetDisplayOn(on bool) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.DisplayOff = !on
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(saveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(saveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Errorf("Unable to serialize state file: %v", err)
		return
	}
	err = os.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Errorf("Unable to save state file: %v", err)
	}
}

func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	Contrast   uint8 `yaml:"contrast"`
	DisplayOff bool  `yaml:"display_off"`
}
