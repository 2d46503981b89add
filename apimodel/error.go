package apimodel

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorMessage is the json body of every api status reply, success included.
type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

func (e *ErrorMessage) StatusCode() int {
	return e.ErrStatusCode
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "Ok"
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Internal error"
	}
}

// SendError writes the message with its status code, an empty message is
// replaced by the standard one for the status.
func (v ErrorMessage) SendError(w http.ResponseWriter) {
	if v.ErrMessage == "" {
		v.ErrMessage = defaultMessage(v.ErrStatusCode)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(v.ErrStatusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Unable to encode error message: %v", err)
	}
}
