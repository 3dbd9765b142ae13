package faceapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreatePerson adds a person to a group and returns the new person id.
func (c *Client) CreatePerson(ctx context.Context, groupID, name string) (string, error) {
	endpoint := fmt.Sprintf("persongroups/%s/persons", url.PathEscape(groupID))
	resp, err := doJSON[createPersonResponse](ctx, c, http.MethodPost, endpoint, createPersonRequest{Name: name}, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("could not create person %s: %w", name, err)
	}
	if resp.PersonID == "" {
		return "", fmt.Errorf("could not create person %s: empty person id in response", name)
	}
	return resp.PersonID, nil
}

// GetPerson returns a person of a group.
func (c *Client) GetPerson(ctx context.Context, groupID, personID string) (*Person, error) {
	endpoint := fmt.Sprintf("persongroups/%s/persons/%s", url.PathEscape(groupID), url.PathEscape(personID))
	person, err := doJSON[Person](ctx, c, http.MethodGet, endpoint, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("could not get person %s: %w", personID, err)
	}
	return person, nil
}

// AddPersonFace uploads an image containing exactly one face to a person
// and returns the persisted face id.
func (c *Client) AddPersonFace(ctx context.Context, groupID, personID string, image []byte) (string, error) {
	endpoint := fmt.Sprintf("persongroups/%s/persons/%s/persistedFaces?detectionModel=%s",
		url.PathEscape(groupID), url.PathEscape(personID), url.QueryEscape(c.detectionModel))
	resp, err := doImageJSON[addFaceResponse](ctx, c, endpoint, image)
	if err != nil {
		return "", fmt.Errorf("could not add face to person %s: %w", personID, err)
	}
	return resp.PersistedFaceID, nil
}
