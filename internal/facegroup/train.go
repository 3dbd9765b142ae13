package facegroup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/faceapi"
	"github.com/kozaktomas/face-groups/internal/logging"
)

var (
	// ErrTrainingFailed is returned when the service reports a failed training run.
	ErrTrainingFailed = errors.New("training failed")
	// ErrTrainingTimeout is returned when training is still not finished after
	// the poll limit or the timeout.
	ErrTrainingTimeout = errors.New("training did not finish in time")
)

// TrainOptions bounds the training status poll.
type TrainOptions struct {
	Interval time.Duration
	MaxPolls int           // 0 means no poll limit
	Timeout  time.Duration // 0 means no timeout

	// OnStatus is called with every polled status.
	OnStatus func(faceapi.TrainingStatus)
}

// TrainOptionsFromConfig converts the training configuration.
func TrainOptionsFromConfig(cfg config.TrainingConfig) TrainOptions {
	return TrainOptions{
		Interval: cfg.PollInterval,
		MaxPolls: cfg.MaxPolls,
		Timeout:  cfg.Timeout,
	}
}

// Train starts training of a person group and polls its status at a fixed
// interval until it succeeds or fails. The first poll happens right after
// the training request.
func (s *Service) Train(ctx context.Context, groupID string, opts TrainOptions) error {
	log := s.logger.With(zap.String("group", groupID))
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, opts.Timeout, ErrTrainingTimeout)
		defer cancel()
	}

	if err := s.face.TrainPersonGroup(ctx, groupID); err != nil {
		return s.trainError(ctx, "group.train", err)
	}
	log.Info("training started")

	for poll := 1; ; poll++ {
		status, err := s.face.GetTrainingStatus(ctx, groupID)
		if err != nil {
			return s.trainError(ctx, "group.training_status", err)
		}
		if opts.OnStatus != nil {
			opts.OnStatus(*status)
		}
		log.Debug("training status", zap.Int("poll", poll), zap.String("status", string(status.Status)))

		switch status.Status {
		case faceapi.TrainingSucceeded:
			log.Info("training succeeded", zap.Int("polls", poll))
			return nil
		case faceapi.TrainingFailed:
			err := ErrTrainingFailed
			if status.Message != "" {
				err = fmt.Errorf("%w: %s", ErrTrainingFailed, status.Message)
			}
			return logging.NewOperationError("group.train", s.runID, err)
		}

		if opts.MaxPolls > 0 && poll >= opts.MaxPolls {
			return logging.NewOperationError("group.train", s.runID,
				fmt.Errorf("%w: still %s after %d polls", ErrTrainingTimeout, status.Status, poll))
		}
		if err := s.sleep(ctx, opts.Interval); err != nil {
			return s.trainError(ctx, "group.train", err)
		}
	}
}

// trainError reports an expired training timeout as ErrTrainingTimeout.
func (s *Service) trainError(ctx context.Context, op string, err error) error {
	if errors.Is(context.Cause(ctx), ErrTrainingTimeout) {
		err = fmt.Errorf("%w: %w", ErrTrainingTimeout, err)
	}
	return logging.NewOperationError(op, s.runID, err)
}
