package faceapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kozaktomas/face-groups/internal/constants"
)

// GetPersonGroup returns the person group with the given id.
// A missing group yields an error for which IsNotFound is true.
func (c *Client) GetPersonGroup(ctx context.Context, groupID string) (*PersonGroup, error) {
	group, err := doJSON[PersonGroup](ctx, c, http.MethodGet, "persongroups/"+url.PathEscape(groupID), nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("could not get person group %s: %w", groupID, err)
	}
	return group, nil
}

// CreatePersonGroup creates an empty person group using the client's recognition model.
func (c *Client) CreatePersonGroup(ctx context.Context, groupID, name string) error {
	body := createPersonGroupRequest{Name: name, RecognitionModel: c.recognitionModel}
	if err := doNoContent(ctx, c, http.MethodPut, "persongroups/"+url.PathEscape(groupID), body, http.StatusOK); err != nil {
		return fmt.Errorf("could not create person group %s: %w", groupID, err)
	}
	return nil
}

// DeletePersonGroup deletes a person group together with its persons and faces.
func (c *Client) DeletePersonGroup(ctx context.Context, groupID string) error {
	if err := doNoContent(ctx, c, http.MethodDelete, "persongroups/"+url.PathEscape(groupID), nil, http.StatusOK); err != nil {
		return fmt.Errorf("could not delete person group %s: %w", groupID, err)
	}
	return nil
}

// ListPersons returns all persons in a group, following the service's
// "start" cursor until a short page is returned.
func (c *Client) ListPersons(ctx context.Context, groupID string) ([]Person, error) {
	var all []Person
	start := ""
	for {
		endpoint := fmt.Sprintf("persongroups/%s/persons?top=%d", url.PathEscape(groupID), constants.PersonPageSize)
		if start != "" {
			endpoint += "&start=" + url.QueryEscape(start)
		}
		page, err := doJSON[[]Person](ctx, c, http.MethodGet, endpoint, nil, http.StatusOK)
		if err != nil {
			return nil, fmt.Errorf("could not list persons of %s: %w", groupID, err)
		}
		all = append(all, *page...)
		if len(*page) < constants.PersonPageSize {
			return all, nil
		}
		start = (*page)[len(*page)-1].PersonID
	}
}
