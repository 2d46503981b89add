package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/jypelle/oledclock/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type Button struct {
	buttonId       event.ButtonId
	pin            gpio.PinIn
	isPressed      bool
	pressStepCount int64
	lastChange     time.Time
}

func NewButton(buttonId event.ButtonId, name string) (*Button, error) {
	button := Button{buttonId: buttonId}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("device: failed to find %s button", name)
	}

	// Set it as input, with an internal pull up resistor:
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("device: failed to setup %s button: %w", name, err)
	}
	button.pin = pin
	return &button, nil
}

// Refresh samples the pin at now and posts press and release events.
func (b *Button) Refresh(now time.Time, buttonEventChannel chan event.ButtonEvent) {
	wasPressed := b.isPressed
	b.isPressed = bool(!b.pin.Read())

	if !b.isPressed && wasPressed {
		b.lastChange = now
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: b.pressStepCount}
		b.pressStepCount = 0
	} else if b.isPressed && b.lastChange.Add(160*time.Millisecond).Before(now) {
		b.lastChange = now
		b.pressStepCount++
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: b.pressStepCount}
	}
}

// Buttons polls the configured push buttons.
type Buttons struct {
	lock         sync.RWMutex
	eventChannel chan event.ButtonEvent
	pins         map[event.ButtonId]string

	buttons []*Button

	checkTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewButtons(pins map[event.ButtonId]string) *Buttons {
	device := Buttons{
		eventChannel: make(chan event.ButtonEvent),
		pins:         pins,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}

	return &device
}

func (d *Buttons) Start() error {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if len(d.pins) > 0 {
		if _, err := host.Init(); err != nil {
			return err
		}
	}
	for buttonId, name := range d.pins {
		button, err := NewButton(buttonId, name)
		if err != nil {
			return err
		}
		d.buttons = append(d.buttons, button)
	}

	// Start periodic check
	d.checkTicker = time.NewTicker(5 * time.Millisecond)
	go func() {
		for loop := true; loop; {
			select {
			case now := <-d.checkTicker.C:
				for _, button := range d.buttons {
					button.Refresh(now, d.eventChannel)
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
	return nil
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.checkTicker == nil {
		return
	}
	d.checkTicker.Stop()
	d.askDone <- true
	<-d.done
	d.checkTicker = nil
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
