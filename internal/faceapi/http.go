package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// doJSON performs a request with an optional JSON body and unmarshals the JSON response.
// It accepts one or more valid status codes. If the response status doesn't match any,
// an *APIError is returned.
func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, requestBody any, expectedStatuses ...int) (*T, error) {
	body, err := c.send(ctx, method, endpoint, requestBody, expectedStatuses)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// doNoContent performs a request whose response body is ignored.
func doNoContent(ctx context.Context, c *Client, method, endpoint string, requestBody any, expectedStatuses ...int) error {
	_, err := c.send(ctx, method, endpoint, requestBody, expectedStatuses)
	return err
}

// doImageJSON posts raw image bytes as application/octet-stream and unmarshals the JSON response.
func doImageJSON[T any](ctx context.Context, c *Client, endpoint string, image []byte) (*T, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(endpoint), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	body, err := c.do(req, endpoint, []int{http.StatusOK})
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, requestBody any, expectedStatuses []int) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(endpoint), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, endpoint, expectedStatuses)
}

func (c *Client) do(req *http.Request, endpoint string, expectedStatuses []int) ([]byte, error) {
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated parsedURL via resolveURL
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if !slices.Contains(expectedStatuses, resp.StatusCode) {
		return nil, newAPIError(resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.captureResponse(endpoint, body)
	return body, nil
}
