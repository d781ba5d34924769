package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/top242011/relife-app/internal/apperr"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeAppError maps a service-layer error onto the HTTP envelope.
func writeAppError(w http.ResponseWriter, err error) {
	var status int
	var code string
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		status, code = http.StatusBadRequest, "bad_request"
	case apperr.KindUnauthorized:
		status, code = http.StatusUnauthorized, "unauthorized"
	case apperr.KindForbidden:
		status, code = http.StatusForbidden, "forbidden"
	case apperr.KindNotFound:
		status, code = http.StatusNotFound, "not_found"
	case apperr.KindConflict:
		status, code = http.StatusConflict, "conflict"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}
	writeError(w, status, code, apperr.MessageOf(err))
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}
