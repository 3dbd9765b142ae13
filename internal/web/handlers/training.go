package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-groups/internal/faceapi"
)

// TrainingStatusGetter reads the training state of a person group.
type TrainingStatusGetter interface {
	GetTrainingStatus(ctx context.Context, groupID string) (*faceapi.TrainingStatus, error)
}

// TrainingHandler exposes person group training state.
type TrainingHandler struct {
	face TrainingStatusGetter
}

// NewTrainingHandler creates a training handler.
func NewTrainingHandler(face TrainingStatusGetter) *TrainingHandler {
	return &TrainingHandler{face: face}
}

// Status handles GET /groups/{id}/training.
func (h *TrainingHandler) Status(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	status, err := h.face.GetTrainingStatus(r.Context(), groupID)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}
