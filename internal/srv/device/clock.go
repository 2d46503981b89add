package device

import (
	"sync"
	"time"

	"github.com/jypelle/oledclock/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Clock posts a tick event every period until stopped.
type Clock struct {
	lock         sync.Mutex
	eventChannel chan event.TickerEvent

	period             time.Duration
	refreshClockTicker *time.Ticker
	running            bool

	askDone chan bool
	done    chan bool
}

func NewClock(period time.Duration) *Clock {
	if period <= 0 {
		period = time.Second
	}
	clock := Clock{
		eventChannel: make(chan event.TickerEvent),
		period:       period,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	return &clock
}

func (d *Clock) Start() {
	logrus.Infof("Start ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.running {
		return
	}
	d.running = true
	d.refreshClockTicker = time.NewTicker(d.period)

	go func() {
		for loop := true; loop; {
			select {
			case <-d.refreshClockTicker.C:
				select {
				case d.eventChannel <- event.TickerEvent{Data: event.TickerEventTickData{}}:
				case <-d.askDone:
					loop = false
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Clock) StopSendingEvent() {
	logrus.Infof("Stop ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.running {
		return
	}
	d.refreshClockTicker.Stop()
	d.askDone <- true
	<-d.done
	d.running = false
}

func (d *Clock) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}
