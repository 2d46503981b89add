package event

// Ticker
type TickerEvent struct {
	Data interface{}
}

type TickerEventTickData struct{}

// Buttons
type ButtonId int

const (
	DISPLAY_SWITCH_BUTTON ButtonId = iota
)

type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	ButtonId        ButtonId
	ButtonEventType ButtonEventType
	PressStepCount  int64
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventDisplayRefreshData struct{}

type ApiEventDisplayContrastData struct {
	Contrast uint8
}
