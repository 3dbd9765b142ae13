package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/facegroup"
)

// Verifier compares the faces of two blobs.
type Verifier interface {
	Verify(ctx context.Context, store facegroup.BlobStore, blob1, blob2 string) (*facegroup.VerificationResult, error)
}

// VerifyHandler serves pairwise verification against one container.
type VerifyHandler struct {
	verifier Verifier
	store    facegroup.BlobStore
	logger   *zap.Logger
}

// NewVerifyHandler creates a verify handler.
func NewVerifyHandler(verifier Verifier, store facegroup.BlobStore, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{verifier: verifier, store: store, logger: logger}
}

type verifyRequest struct {
	Blob1 string `json:"blob1"`
	Blob2 string `json:"blob2"`
}

// VerifyResponse is the JSON result of a verification.
type VerifyResponse struct {
	*facegroup.VerificationResult
	Message string `json:"message"`
}

// Verify handles POST {"blob1": ..., "blob2": ...}.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Blob1 == "" || req.Blob2 == "" {
		respondError(w, http.StatusBadRequest, "blob1 and blob2 are required")
		return
	}

	result, err := h.verifier.Verify(r.Context(), h.store, req.Blob1, req.Blob2)
	if err != nil {
		h.logger.Warn("verification failed",
			zap.String("blob1", sanitizeForLog(req.Blob1)),
			zap.String("blob2", sanitizeForLog(req.Blob2)),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponse{VerificationResult: result, Message: result.Message()})
}
