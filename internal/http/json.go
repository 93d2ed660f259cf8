package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Response writer errors (e.g., client disconnect) can't be recovered from here.
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": msg})
}
