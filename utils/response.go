package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// WriteJSON writes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// WriteError translates err and writes the {success: false, message} envelope.
func WriteError(w http.ResponseWriter, err error) {
	appErr := Translate(err)
	WriteJSON(w, appErr.Kind.Status(), map[string]any{
		"success": false,
		"message": appErr.Message,
	})
}
