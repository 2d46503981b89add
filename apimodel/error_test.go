package apimodel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendError(t *testing.T) {
	tests := []struct {
		status  int
		message string
		want    string
	}{
		{http.StatusOK, "", "Ok"},
		{http.StatusNotFound, "", "Page not found"},
		{http.StatusMethodNotAllowed, "", "Method not allowed"},
		{http.StatusTeapot, "", "Internal error"},
		{http.StatusInternalServerError, "panel unavailable", "panel unavailable"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		ErrorMessage{ErrStatusCode: tt.status, ErrMessage: tt.message}.SendError(w)

		if w.Code != tt.status {
			t.Errorf("expected status %d, got %d", tt.status, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		var msg ErrorMessage
		if err := json.NewDecoder(w.Body).Decode(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.StatusCode() != tt.status || msg.ErrMessage != tt.want {
			t.Errorf("expected %d %q, got %+v", tt.status, tt.want, msg)
		}
	}
}
