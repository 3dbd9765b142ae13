// Package faceapi is a client for the Azure Face REST API (v1.0): person
// groups, persons, training, detection, identification and verification.
package faceapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	apiPath                 = "face/v1.0"
	defaultRecognitionModel = "recognition_04"
	defaultDetectionModel   = "detection_03"
)

// Client represents a client for the Face API
type Client struct {
	Url              string
	parsedURL        *url.URL
	apiKey           string
	recognitionModel string
	detectionModel   string
	httpClient       *http.Client
	captureDir       string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests, e.g. one with retries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModels sets the recognition and detection models. Empty values keep the defaults.
func WithModels(recognition, detection string) Option {
	return func(c *Client) {
		if recognition != "" {
			c.recognitionModel = recognition
		}
		if detection != "" {
			c.detectionModel = detection
		}
	}
}

// New creates a Face API client for the given resource endpoint
// (e.g. https://my-face.cognitiveservices.azure.com).
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	apiURL := strings.TrimSuffix(endpoint, "/") + "/" + apiPath
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Face API endpoint: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Face API endpoint: %q", endpoint)
	}

	c := &Client{
		Url:              apiURL,
		parsedURL:        parsed,
		apiKey:           apiKey,
		recognitionModel: defaultRecognitionModel,
		detectionModel:   defaultDetectionModel,
		httpClient:       http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RecognitionModel returns the recognition model used for groups and detection.
func (c *Client) RecognitionModel() string {
	return c.recognitionModel
}

// resolveURL builds a full URL from the base API URL and the given path segments.
// If the last segment contains a query string (e.g. "detect?returnFaceId=true"), it is
// split so JoinPath only receives the path portion and the query is appended.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		segments := append([]string(nil), pathSegments...)
		segments[len(segments)-1] = pathPart
		result := c.parsedURL.JoinPath(segments...)
		result.RawQuery = query
		return result.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// readErrorBody reads the response body for error messages.
// Returns empty string if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return nil
	}
	return body
}

// SetCaptureDir enables API response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves the API response body to a file if capturing is enabled.
func (c *Client) captureResponse(endpoint string, body []byte) {
	if c.captureDir == "" || len(body) == 0 {
		return
	}

	name, _, _ := strings.Cut(endpoint, "?")
	name = strings.TrimPrefix(strings.ReplaceAll(name, "/", "_"), "_")
	timestamp := time.Now().Format("20060102_150405.000000")
	path := filepath.Join(c.captureDir, fmt.Sprintf("%s_%s.json", name, timestamp))

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		body = pretty.Bytes()
	}

	// capturing is best effort
	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}
