package device

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jypelle/oledclock/apimodel"
	"github.com/jypelle/oledclock/internal/srv/config"
	"github.com/jypelle/oledclock/internal/srv/event"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type blankSource struct{}

func (blankSource) Snapshot() image.Image {
	return image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
}

func newTestApi() *Api {
	return NewApi(&config.ServerConfig{
		ServerParam: &config.ServerParam{
			ApiParam: config.ApiParam{Enabled: true, SslPort: 8443, ApiKey: "secret"},
		},
	})
}

func doRequest(api *Api, method, path, key string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	if key != "" {
		r.Header.Set("x-api-key", key)
	}
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)
	return w
}

func TestApiAuth(t *testing.T) {
	api := newTestApi()

	if w := doRequest(api, "GET", "/api/is_alive", ""); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without key, got %d", w.Code)
	}
	w := doRequest(api, "GET", "/api/is_alive", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var msg apimodel.ErrorMessage
	if err := json.NewDecoder(w.Body).Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.StatusCode() != http.StatusOK {
		t.Errorf("unexpected body %+v", msg)
	}
}

func TestApiDisplayEvents(t *testing.T) {
	api := newTestApi()
	received := make(chan interface{}, 2)
	go func() {
		for ev := range api.EventChannel() {
			received <- ev.Data
			if _, ok := ev.Data.(event.ApiEventDisplayContrastData); ok {
				ev.Result <- errors.New("panel unavailable")
			} else {
				ev.Result <- nil
			}
		}
	}()
	defer close(api.eventChannel)

	if w := doRequest(api, "POST", "/api/display/refresh", "secret"); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if _, ok := (<-received).(event.ApiEventDisplayRefreshData); !ok {
		t.Error("expected a refresh event")
	}

	if w := doRequest(api, "POST", "/api/display/contrast/128", "secret"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if data, ok := (<-received).(event.ApiEventDisplayContrastData); !ok || data.Contrast != 128 {
		t.Errorf("unexpected contrast event %+v", data)
	}

	if w := doRequest(api, "POST", "/api/display/contrast/300", "secret"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if w := doRequest(api, "GET", "/api/display/refresh", "secret"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestApiSnapshot(t *testing.T) {
	api := newTestApi()

	if w := doRequest(api, "GET", "/api/display/snapshot", "secret"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before the display is ready, got %d", w.Code)
	}

	api.source = blankSource{}
	w := doRequest(api, "GET", "/api/display/snapshot", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
}
