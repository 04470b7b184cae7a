// internal/app/system/webapi/webapi.go

// Package webapi holds the tiny JSON response helpers shared by the API
// handlers of every feature.
package webapi

import (
	"encoding/json"
	"net/http"
)

// Error is the uniform JSON error body for API responses.
type Error struct {
	Message string `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Error{Message: message})
}
