package facegroup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/logging"
)

// ErrNoFaceDetected matches every *NoFaceError.
var ErrNoFaceDetected = errors.New("no face detected")

// NoFaceError reports an image in which detection found no face.
type NoFaceError struct {
	Image string
}

func (e *NoFaceError) Error() string {
	return fmt.Sprintf("no face detected in %s", e.Image)
}

// Is makes errors.Is(err, ErrNoFaceDetected) true.
func (e *NoFaceError) Is(target error) bool {
	return target == ErrNoFaceDetected
}

// VerificationResult is the outcome of comparing two faces.
type VerificationResult struct {
	Image1     string  `json:"image1"`
	Image2     string  `json:"image2"`
	Same       bool    `json:"same"`
	Confidence float64 `json:"confidence"`
}

// Message renders the result as a console line.
func (r VerificationResult) Message() string {
	if r.Same {
		return fmt.Sprintf("The faces match with a confidence of %.2f", r.Confidence)
	}
	return "The faces do not match."
}

// Verify downloads two blobs, detects a face in each and asks the service
// whether both faces belong to the same person. When an image holds several
// faces the first detected one is used.
func (s *Service) Verify(ctx context.Context, store BlobStore, blob1, blob2 string) (*VerificationResult, error) {
	images := make([][]byte, 2)
	for i, blob := range []string{blob1, blob2} {
		s.logger.Info("downloading image", zap.Int("image", i+1), zap.String("blob", blob))
		data, err := store.Download(ctx, blob)
		if err != nil {
			return nil, logging.NewOperationError("blob.download", s.runID, err)
		}
		images[i] = data
	}
	return s.VerifyImages(ctx, blob1, images[0], blob2, images[1])
}

// VerifyImages compares the first face of two in-memory images. The names are
// only used to report which image had no face.
func (s *Service) VerifyImages(ctx context.Context, name1 string, image1 []byte, name2 string, image2 []byte) (*VerificationResult, error) {
	faceID1, err := s.detectOne(ctx, name1, image1)
	if err != nil {
		return nil, err
	}
	faceID2, err := s.detectOne(ctx, name2, image2)
	if err != nil {
		return nil, err
	}

	s.logger.Info("verifying faces")
	res, err := s.face.VerifyFaceToFace(ctx, faceID1, faceID2)
	if err != nil {
		return nil, logging.NewOperationError("face.verify", s.runID, err)
	}
	return &VerificationResult{
		Image1:     name1,
		Image2:     name2,
		Same:       res.IsIdentical,
		Confidence: res.Confidence,
	}, nil
}

func (s *Service) detectOne(ctx context.Context, name string, image []byte) (string, error) {
	s.logger.Info("detecting face", zap.String("image", name))
	faces, err := s.face.Detect(ctx, image)
	if err != nil {
		return "", logging.NewOperationError("face.detect", s.runID, err)
	}
	if len(faces) == 0 {
		return "", &NoFaceError{Image: name}
	}
	if len(faces) > 1 {
		s.logger.Debug("several faces detected, using the first", zap.String("image", name), zap.Int("count", len(faces)))
	}
	return faces[0].FaceID, nil
}
