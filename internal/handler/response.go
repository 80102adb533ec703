package handler

import (
	"encoding/json"
	"net/http"
)

// All responses share the {success, message, ...extra} envelope.

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

func respondInternalError(w http.ResponseWriter) {
	respondError(w, http.StatusInternalServerError, "something went wrong")
}
