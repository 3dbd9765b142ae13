package facegroup

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/constants"
	"github.com/kozaktomas/face-groups/internal/faceapi"
	"github.com/kozaktomas/face-groups/internal/logging"
)

// Identification is a detected face with its resolved identity.
type Identification struct {
	FaceID     string                `json:"face_id"`
	Rectangle  faceapi.FaceRectangle `json:"rectangle"`
	PersonID   string                `json:"person_id,omitempty"`
	Name       string                `json:"name"`
	Confidence float64               `json:"confidence,omitempty"`
}

// Known reports whether the face was matched to a person.
func (i Identification) Known() bool {
	return i.PersonID != ""
}

// Identify detects faces in image and matches them against a trained group.
// Faces without a candidate are labeled constants.UnknownPersonName. An image
// without faces returns an empty slice and no identify call is made.
func (s *Service) Identify(ctx context.Context, groupID string, image []byte) ([]Identification, error) {
	log := s.logger.With(zap.String("group", groupID))

	faces, err := s.face.Detect(ctx, image)
	if err != nil {
		return nil, logging.NewOperationError("face.detect", s.runID, err)
	}
	log.Info("detected faces", zap.Int("count", len(faces)))
	if len(faces) == 0 {
		return []Identification{}, nil
	}

	candidates := make(map[string][]faceapi.Candidate, len(faces))
	for start := 0; start < len(faces); start += constants.MaxIdentifyBatch {
		end := min(start+constants.MaxIdentifyBatch, len(faces))
		ids := make([]string, 0, end-start)
		for _, f := range faces[start:end] {
			ids = append(ids, f.FaceID)
		}

		results, err := s.face.Identify(ctx, groupID, ids, s.maxCandidates())
		if err != nil {
			return nil, logging.NewOperationError("face.identify", s.runID, err)
		}
		for _, r := range results {
			candidates[r.FaceID] = r.Candidates
		}
	}

	names := make(map[string]string)
	out := make([]Identification, 0, len(faces))
	for _, f := range faces {
		id := Identification{FaceID: f.FaceID, Rectangle: f.FaceRectangle, Name: constants.UnknownPersonName}
		if c := candidates[f.FaceID]; len(c) > 0 {
			top := c[0]
			name, ok := names[top.PersonID]
			if !ok {
				person, err := s.face.GetPerson(ctx, groupID, top.PersonID)
				if err != nil {
					return nil, logging.NewOperationError("person.get", s.runID, err)
				}
				name = person.Name
				names[top.PersonID] = name
			}
			id.PersonID = top.PersonID
			id.Name = name
			id.Confidence = top.Confidence
		}
		log.Debug("identified face", zap.String("face_id", f.FaceID), zap.String("name", id.Name))
		out = append(out, id)
	}
	return out, nil
}

// FetchImage downloads an image over HTTP. Bodies larger than maxBytes are
// rejected; maxBytes <= 0 uses the Face API image limit.
func FetchImage(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = constants.MaxImageBytes
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	return data, nil
}
