package constants

import "time"

// Web handler constants
const (
	// MaxRequestImageSize bounds raw image uploads to the identify endpoint
	MaxRequestImageSize = MaxImageBytes

	// RequestTimeout bounds a single API request, including training polls
	RequestTimeout = 5 * time.Minute
)
