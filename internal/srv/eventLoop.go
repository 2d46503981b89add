package srv

import (
	"github.com/jypelle/oledclock/internal/srv/event"
	"github.com/sirupsen/logrus"
)

const haltPressStepCount = 20

func (s *ServerApp) apiEventChannel() chan event.ApiEvent {
	if s.apiDevice == nil {
		return nil
	}
	return s.apiDevice.EventChannel()
}

// eventLoop is the only goroutine drawing on the display.
func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.clockDevice.EventChannel():
			switch ev.Data.(type) {
			case event.TickerEventTickData:
				if s.DisplayOn() {
					if err := s.displayDevice.DrawTime(); err != nil {
						logrus.Warnf("Skip clock refresh: %v", err)
					}
				}
			}
		case ev := <-s.apiEventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventDisplayRefreshData:
				logrus.Debugf("Receive display refresh event")
				ev.Result <- s.displayDevice.Update()
			case event.ApiEventDisplayContrastData:
				logrus.Debugf("Receive display contrast event: %d", data.Contrast)
				err := s.displayDevice.SetContrast(data.Contrast)
				if err == nil {
					s.SetContrast(data.Contrast)
				}
				ev.Result <- err
			}
		case ev := <-s.buttonsDevice.EventChannel():
			logrus.Debugf("Receive button event: %d, %d, %d", ev.ButtonId, ev.ButtonEventType, ev.PressStepCount)
			switch ev.ButtonId {
			case event.DISPLAY_SWITCH_BUTTON:
				if ev.ButtonEventType == event.RELEASE_EVENT_TYPE && ev.PressStepCount < 5 {
					logrus.Debugf("Switch display on/off")
					s.switchDisplay()
				} else if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == haltPressStepCount {
					logrus.Debugf("See you!")
					select {
					case s.HaltChannel <- true:
					default:
					}
				}
			}
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) switchDisplay() {
	if s.DisplayOn() {
		if err := s.displayDevice.Halt(); err != nil {
			logrus.Warnf("Unable to switch display off: %v", err)
			return
		}
		s.SetDisplayOn(false)
		return
	}

	if err := s.displayDevice.Show(s.Contrast()); err != nil {
		logrus.Warnf("Unable to switch display on: %v", err)
		return
	}
	s.SetDisplayOn(true)
	if err := s.displayDevice.Update(); err != nil {
		logrus.Warnf("Unable to draw display: %v", err)
	}
}
