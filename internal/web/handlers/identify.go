package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/annotate"
	"github.com/kozaktomas/face-groups/internal/constants"
	"github.com/kozaktomas/face-groups/internal/facegroup"
)

// Identifier identifies faces of an image against a person group.
type Identifier interface {
	Identify(ctx context.Context, groupID string, image []byte) ([]facegroup.Identification, error)
}

// ImageFetcher downloads an image by URL.
type ImageFetcher func(ctx context.Context, url string) ([]byte, error)

// IdentifyHandler serves face identification.
type IdentifyHandler struct {
	identifier Identifier
	fetch      ImageFetcher
	imageHosts []string
	groupID    string
	logger     *zap.Logger
}

// NewIdentifyHandler creates an identify handler for the default group.
// Images given by URL are only fetched from imageHosts.
func NewIdentifyHandler(identifier Identifier, fetch ImageFetcher, imageHosts []string, groupID string, logger *zap.Logger) *IdentifyHandler {
	return &IdentifyHandler{
		identifier: identifier,
		fetch:      fetch,
		imageHosts: imageHosts,
		groupID:    groupID,
		logger:     logger,
	}
}

// HostAllowed reports whether u is an http(s) URL on one of hosts.
func HostAllowed(u *url.URL, hosts []string) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	for _, h := range hosts {
		if strings.EqualFold(host, h) {
			return true
		}
	}
	return false
}

type identifyRequest struct {
	URL string `json:"url"`
}

// IdentifyResponse is the JSON result of an identification.
type IdentifyResponse struct {
	Group string                     `json:"group"`
	Faces []facegroup.Identification `json:"faces"`
}

// Identify accepts either a raw image body or JSON {"url": "..."}.
// The group defaults to the configured one and can be overridden with ?group=.
// With ?format=png the annotated image is returned instead of JSON.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" {
		groupID = h.groupID
	}

	image, ok := h.readImage(w, r)
	if !ok {
		return
	}

	faces, err := h.identifier.Identify(r.Context(), groupID, image)
	if err != nil {
		h.logger.Warn("identification failed", zap.String("group", sanitizeForLog(groupID)), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		img, err := annotate.Decode(image)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "could not decode image")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := annotate.WritePNG(w, img, faces); err != nil {
			h.logger.Warn("could not render annotated image", zap.Error(err))
		}
		return
	}

	respondJSON(w, http.StatusOK, IdentifyResponse{Group: groupID, Faces: faces})
}

func (h *IdentifyHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	body := http.MaxBytesReader(w, r.Body, constants.MaxRequestImageSize)

	if mediaType == "application/json" {
		var req identifyRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil || req.URL == "" {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return nil, false
		}
		if len(h.imageHosts) == 0 {
			respondError(w, http.StatusBadRequest, "image URLs are not accepted")
			return nil, false
		}
		u, err := url.Parse(req.URL)
		if err != nil || !HostAllowed(u, h.imageHosts) {
			h.logger.Info("rejected image url", zap.String("url", sanitizeForLog(req.URL)))
			respondError(w, http.StatusBadRequest, "image host is not allowed")
			return nil, false
		}
		image, err := h.fetch(r.Context(), u.String())
		if err != nil {
			h.logger.Warn("could not fetch image", zap.String("url", sanitizeForLog(req.URL)), zap.Error(err))
			respondError(w, http.StatusBadGateway, "could not fetch image")
			return nil, false
		}
		return image, true
	}

	image, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "image too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	if len(image) == 0 {
		respondError(w, http.StatusBadRequest, "image is required")
		return nil, false
	}
	return image, true
}
