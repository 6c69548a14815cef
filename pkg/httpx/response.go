package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code. Sensitive
// endpoints rely on the no-store headers set here.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// maxBodyBytes bounds request bodies; the bulk import endpoint is the
// largest legitimate payload.
const maxBodyBytes = 4 << 20

// ReadJSON decodes a JSON request body into v, rejecting unknown fields and
// trailing garbage.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
