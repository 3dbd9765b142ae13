package faceapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// TrainPersonGroup queues a training run. The service answers 202 and the
// run progresses asynchronously; poll GetTrainingStatus for the outcome.
func (c *Client) TrainPersonGroup(ctx context.Context, groupID string) error {
	endpoint := fmt.Sprintf("persongroups/%s/train", url.PathEscape(groupID))
	if err := doNoContent(ctx, c, http.MethodPost, endpoint, nil, http.StatusAccepted); err != nil {
		return fmt.Errorf("could not start training of %s: %w", groupID, err)
	}
	return nil
}

// GetTrainingStatus returns the state of the latest training run.
func (c *Client) GetTrainingStatus(ctx context.Context, groupID string) (*TrainingStatus, error) {
	endpoint := fmt.Sprintf("persongroups/%s/training", url.PathEscape(groupID))
	status, err := doJSON[TrainingStatus](ctx, c, http.MethodGet, endpoint, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("could not get training status of %s: %w", groupID, err)
	}
	return status, nil
}
