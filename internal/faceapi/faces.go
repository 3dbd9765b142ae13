package faceapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Detect finds faces in an image and returns their transient ids and rectangles.
// An image without faces yields an empty slice and no error.
func (c *Client) Detect(ctx context.Context, image []byte) ([]DetectedFace, error) {
	q := url.Values{}
	q.Set("returnFaceId", "true")
	q.Set("returnFaceLandmarks", "false")
	q.Set("recognitionModel", c.recognitionModel)
	q.Set("detectionModel", c.detectionModel)

	faces, err := doImageJSON[[]DetectedFace](ctx, c, "detect?"+q.Encode(), image)
	if err != nil {
		return nil, fmt.Errorf("could not detect faces: %w", err)
	}
	return *faces, nil
}

// Identify matches up to 10 detected face ids against a trained person group.
func (c *Client) Identify(ctx context.Context, groupID string, faceIDs []string, maxCandidates int) ([]IdentifyResult, error) {
	if len(faceIDs) == 0 {
		return nil, nil
	}
	if maxCandidates < 1 {
		maxCandidates = 1
	}
	body := identifyRequest{
		PersonGroupID:              groupID,
		FaceIDs:                    faceIDs,
		MaxNumOfCandidatesReturned: maxCandidates,
	}
	results, err := doJSON[[]IdentifyResult](ctx, c, http.MethodPost, "identify", body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("could not identify faces: %w", err)
	}
	return *results, nil
}

// VerifyFaceToFace reports whether two detected faces belong to the same person.
func (c *Client) VerifyFaceToFace(ctx context.Context, faceID1, faceID2 string) (*VerifyResult, error) {
	result, err := doJSON[VerifyResult](ctx, c, http.MethodPost, "verify", verifyRequest{FaceID1: faceID1, FaceID2: faceID2}, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("could not verify faces: %w", err)
	}
	return result, nil
}
