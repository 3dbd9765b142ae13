package faceapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the service that callers branch on.
const (
	CodePersonGroupNotFound = "PersonGroupNotFound"
	CodePersonNotFound      = "PersonNotFound"
	CodeFaceNotFound        = "FaceNotFound"
	CodeInvalidImage        = "InvalidImage"
	CodeInvalidImageSize    = "InvalidImageSize"
)

// APIError is a non-success response from the Face API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("face api request failed with status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("face api request failed with status %d: %s", e.StatusCode, e.Message)
}

// errorEnvelope is the {"error": {...}} body returned on failures.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		return apiErr
	}
	if len(body) > 0 {
		apiErr.Message = string(body)
	} else {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// IsNotFound returns true if the error is a 404 or a *NotFound error code.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodePersonGroupNotFound, CodePersonNotFound, CodeFaceNotFound:
		return true
	}
	return apiErr.StatusCode == http.StatusNotFound
}

// HasCode reports whether err is an *APIError with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
