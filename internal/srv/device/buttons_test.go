package device

import (
	"testing"
	"time"

	"github.com/jypelle/oledclock/internal/srv/event"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestButtonRefresh(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO25", L: gpio.High}
	button := &Button{buttonId: event.DISPLAY_SWITCH_BUTTON, pin: pin}
	events := make(chan event.ButtonEvent, 10)
	start := time.Now()

	// Released: nothing happens.
	button.Refresh(start, events)
	if len(events) != 0 {
		t.Fatalf("unexpected event while released")
	}

	pin.L = gpio.Low
	button.Refresh(start.Add(200*time.Millisecond), events)
	button.Refresh(start.Add(250*time.Millisecond), events)
	button.Refresh(start.Add(400*time.Millisecond), events)
	pin.L = gpio.High
	button.Refresh(start.Add(410*time.Millisecond), events)

	want := []event.ButtonEvent{
		{ButtonId: event.DISPLAY_SWITCH_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 1},
		{ButtonId: event.DISPLAY_SWITCH_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 2},
		{ButtonId: event.DISPLAY_SWITCH_BUTTON, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: 2},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if got := <-events; got != w {
			t.Errorf("event %d: expected %+v, got %+v", i, w, got)
		}
	}
}

func TestButtonsWithoutPins(t *testing.T) {
	buttons := NewButtons(nil)
	if err := buttons.Start(); err != nil {
		t.Fatal(err)
	}
	buttons.StopSendingEvent()
}
