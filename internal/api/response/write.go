package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data wrapped in a success envelope
func JSON(w http.ResponseWriter, status int, data any) {
	Raw(w, status, Envelope{Success: true, Data: data})
}

// Raw writes body as JSON without an envelope
func Raw(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
