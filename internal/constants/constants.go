// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Identification constants
const (
	// UnknownPersonName labels a detected face with no candidate above the service threshold
	UnknownPersonName = "Unknown"

	// MaxIdentifyBatch is the maximum number of face ids the Face API accepts per identify call
	MaxIdentifyBatch = 10

	// DefaultMaxCandidates is the number of candidates requested per identified face
	DefaultMaxCandidates = 1
)

// Image constants
const (
	// MaxImageBytes is the largest image the Face API accepts (6 MB)
	MaxImageBytes = 6 << 20
)

// Pagination constants
const (
	// PersonPageSize is the page size used when listing persons in a group
	PersonPageSize = 1000
)
