// Package facegroup orchestrates person group enrollment, training,
// identification and pairwise verification on top of a face service and a
// blob store.
package facegroup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/constants"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

// FaceService is the subset of the Face API used by the pipelines.
type FaceService interface {
	GetPersonGroup(ctx context.Context, groupID string) (*faceapi.PersonGroup, error)
	CreatePersonGroup(ctx context.Context, groupID, name string) error
	CreatePerson(ctx context.Context, groupID, name string) (string, error)
	GetPerson(ctx context.Context, groupID, personID string) (*faceapi.Person, error)
	AddPersonFace(ctx context.Context, groupID, personID string, image []byte) (string, error)
	TrainPersonGroup(ctx context.Context, groupID string) error
	GetTrainingStatus(ctx context.Context, groupID string) (*faceapi.TrainingStatus, error)
	Detect(ctx context.Context, image []byte) ([]faceapi.DetectedFace, error)
	Identify(ctx context.Context, groupID string, faceIDs []string, maxCandidates int) ([]faceapi.IdentifyResult, error)
	VerifyFaceToFace(ctx context.Context, faceID1, faceID2 string) (*faceapi.VerifyResult, error)
}

// BlobStore lists and downloads blobs of one container.
type BlobStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
}

// Service runs the pipelines against explicit collaborators.
type Service struct {
	face   FaceService
	logger *zap.Logger
	runID  string

	candidates int

	// sleep waits between training polls; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService creates a Service. A nil logger disables logging.
func NewService(face FaceService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{face: face, logger: logger, sleep: sleepContext}
}

// WithRunID returns a copy of the service whose errors and logs carry runID.
func (s *Service) WithRunID(runID string) *Service {
	cp := *s
	cp.runID = runID
	cp.logger = s.logger.With(zap.String("run_id", runID))
	return &cp
}

// WithMaxCandidates returns a copy of the service that asks for up to n
// candidates per identified face. Only the best one is used for naming.
func (s *Service) WithMaxCandidates(n int) *Service {
	cp := *s
	cp.candidates = n
	return &cp
}

func (s *Service) maxCandidates() int {
	if s.candidates < 1 {
		return constants.DefaultMaxCandidates
	}
	return s.candidates
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
