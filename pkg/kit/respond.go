package kit

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	WriteJSON(w, status, ErrorResponse{
		Error:     msg,
		Details:   details,
		RequestID: GetRequestID(r.Context()),
	})
}

// WarnNotDurable marks a response whose mutation was applied in memory but
// could not be written to the backing store. Must be called before the
// status line is sent.
func WarnNotDurable(w http.ResponseWriter) {
	w.Header().Set("Warning", `199 - "state not durably persisted"`)
}
