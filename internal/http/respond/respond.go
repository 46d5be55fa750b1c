package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// MessageBody is the {"message": ...} shape shared by error and confirmation responses.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes payload as a JSON document.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("respond: encode payload failed")
	}
}

// Message writes {"message": message}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Text writes a plain-text body.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logrus.WithError(err).Warn("respond: write body failed")
	}
}
