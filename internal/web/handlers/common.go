package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-groups/internal/facegroup"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError sends a short message for a pipeline error. The wrapped
// error carries run ids, endpoints and blob paths, so it only goes to the logs.
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	var noFace *facegroup.NoFaceError
	if errors.As(err, &noFace) {
		respondError(w, status, noFace.Error())
		return
	}
	respondError(w, status, strings.ToLower(http.StatusText(status)))
}

// statusForError maps pipeline errors to HTTP status codes.
func statusForError(err error) int {
	var apiErr *faceapi.APIError
	switch {
	case errors.Is(err, facegroup.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity
	case faceapi.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, facegroup.ErrTrainingTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
