package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("statesapi.handlers")

// handlerFunc is an http.HandlerFunc that reports failures as errors.
// NotValid errors become 400s and NotFound errors 404s; anything else is a 500.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %s", r.Method, r.URL.Path, errors.Details(err))
		writeMessage(w, status, http.StatusText(status))
		return
	}
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.NotValid):
		return http.StatusBadRequest
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.NotSupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// badRequest and notFound keep message as the whole client-facing text.
func badRequest(message string) error {
	return errors.WithType(errors.New(message), errors.NotValid)
}

func notFound(message string) error {
	return errors.WithType(errors.New(message), errors.NotFound)
}
