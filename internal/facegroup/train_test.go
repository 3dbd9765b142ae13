package facegroup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/faceapi"
)

// recordSleeps replaces the poll wait with a recorder that returns immediately.
func recordSleeps(svc *Service) *[]time.Duration {
	var waits []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return &waits
}

func TestTrain_PollsUntilSucceeded(t *testing.T) {
	face := newFakeFace()
	face.statuses = []faceapi.TrainingState{faceapi.TrainingRunning, faceapi.TrainingRunning, faceapi.TrainingSucceeded}
	svc := NewService(face, nil)
	waits := recordSleeps(svc)

	var seen []faceapi.TrainingState
	opts := TrainOptions{Interval: time.Second, OnStatus: func(s faceapi.TrainingStatus) { seen = append(seen, s.Status) }}
	if err := svc.Train(context.Background(), "g", opts); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if face.statusPolls != 3 {
		t.Errorf("expected 3 polls, got %d", face.statusPolls)
	}
	if diff := cmp.Diff([]time.Duration{time.Second, time.Second}, *waits); diff != "" {
		t.Errorf("waits mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(face.statuses, seen); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if face.count("TrainPersonGroup") != 1 {
		t.Errorf("expected a single train request")
	}
}

func TestTrain_FailedStopsPolling(t *testing.T) {
	face := newFakeFace()
	face.statuses = []faceapi.TrainingState{faceapi.TrainingRunning, faceapi.TrainingFailed, faceapi.TrainingSucceeded}
	face.statusMsg = "There is no face in the person group."
	svc := NewService(face, nil)
	recordSleeps(svc)

	err := svc.Train(context.Background(), "g", TrainOptions{Interval: time.Second})
	if !errors.Is(err, ErrTrainingFailed) {
		t.Fatalf("expected ErrTrainingFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), face.statusMsg) {
		t.Errorf("expected error to carry the service message, got %v", err)
	}
	if face.statusPolls != 2 {
		t.Errorf("expected 2 polls, got %d", face.statusPolls)
	}
}

func TestTrain_MaxPolls(t *testing.T) {
	face := newFakeFace()
	face.statuses = []faceapi.TrainingState{faceapi.TrainingNotStarted, faceapi.TrainingRunning, faceapi.TrainingRunning, faceapi.TrainingRunning}
	svc := NewService(face, nil)
	waits := recordSleeps(svc)

	err := svc.Train(context.Background(), "g", TrainOptions{Interval: time.Second, MaxPolls: 3})
	if !errors.Is(err, ErrTrainingTimeout) {
		t.Fatalf("expected ErrTrainingTimeout, got %v", err)
	}
	if face.statusPolls != 3 {
		t.Errorf("expected 3 polls, got %d", face.statusPolls)
	}
	if len(*waits) != 2 {
		t.Errorf("expected 2 waits, got %d", len(*waits))
	}
}

func TestTrain_Timeout(t *testing.T) {
	face := newFakeFace()
	face.statuses = []faceapi.TrainingState{faceapi.TrainingRunning, faceapi.TrainingRunning}
	svc := NewService(face, nil)
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := svc.Train(context.Background(), "g", TrainOptions{Interval: time.Hour, Timeout: 20 * time.Millisecond})
	if !errors.Is(err, ErrTrainingTimeout) {
		t.Fatalf("expected ErrTrainingTimeout, got %v", err)
	}
	if face.statusPolls != 1 {
		t.Errorf("expected 1 poll, got %d", face.statusPolls)
	}
}

func TestTrain_Cancelled(t *testing.T) {
	face := newFakeFace()
	face.statuses = []faceapi.TrainingState{faceapi.TrainingRunning, faceapi.TrainingRunning}
	svc := NewService(face, nil)

	ctx, cancel := context.WithCancel(context.Background())
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	err := svc.Train(ctx, "g", TrainOptions{Interval: time.Hour, Timeout: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrTrainingTimeout) {
		t.Errorf("cancellation must not be reported as a timeout: %v", err)
	}
}

func TestTrain_RequestError(t *testing.T) {
	face := newFakeFace()
	face.trainErr = errors.New("group has no persons")
	svc := NewService(face, nil)

	if err := svc.Train(context.Background(), "g", TrainOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if face.statusPolls != 0 {
		t.Errorf("expected no polls after a failed train request, got %d", face.statusPolls)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTrainOptionsFromConfig(t *testing.T) {
	got := TrainOptionsFromConfig(config.TrainingConfig{PollInterval: 2 * time.Second, MaxPolls: 5, Timeout: time.Minute})
	if got.Interval != 2*time.Second || got.MaxPolls != 5 || got.Timeout != time.Minute {
		t.Errorf("unexpected options %+v", got)
	}
}

func TestEnroll(t *testing.T) {
	tests := []struct {
		name        string
		exists      bool
		retrain     bool
		wantTrained bool
	}{
		{"new group is trained", false, false, true},
		{"existing group is used as is", true, false, false},
		{"existing group retrained on request", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face := newFakeFace()
			face.groupExists = tt.exists
			face.statuses = []faceapi.TrainingState{faceapi.TrainingSucceeded}
			svc := NewService(face, nil)
			recordSleeps(svc)

			req := EnrollRequest{ProvisionRequest: provisionRequest(), Retrain: tt.retrain}
			result, err := svc.Enroll(context.Background(), enrollmentStore(1, 1), req)
			if err != nil {
				t.Fatalf("Enroll failed: %v", err)
			}
			if result.Trained != tt.wantTrained {
				t.Errorf("expected trained=%v, got %v", tt.wantTrained, result.Trained)
			}
			if got := face.count("TrainPersonGroup") == 1; got != tt.wantTrained {
				t.Errorf("expected train request=%v", tt.wantTrained)
			}
			if result.Existed != tt.exists {
				t.Errorf("expected existed=%v, got %v", tt.exists, result.Existed)
			}
		})
	}
}

func TestEnroll_CreateFailureDoesNotTrain(t *testing.T) {
	face := newFakeFace()
	face.createErr = errors.New("forbidden")
	svc := NewService(face, nil)

	if _, err := svc.Enroll(context.Background(), enrollmentStore(1, 1), EnrollRequest{ProvisionRequest: provisionRequest()}); err == nil {
		t.Fatal("expected error")
	}
	if face.count("TrainPersonGroup") != 0 {
		t.Error("expected no training after failed group creation")
	}
}

func TestEnroll_ListFailureKeepsCreatedReport(t *testing.T) {
	face := newFakeFace()
	svc := NewService(face, nil)
	store := &fakeStore{listErr: errors.New("auth failed")}

	result, err := svc.Enroll(context.Background(), store, EnrollRequest{ProvisionRequest: provisionRequest()})
	if err == nil {
		t.Fatal("expected list error")
	}
	if result == nil || result.ProvisionReport == nil {
		t.Fatal("expected partial result with the error")
	}
	if !result.Created || result.Trained {
		t.Errorf("expected created and untrained group, got created=%v trained=%v", result.Created, result.Trained)
	}
	if face.count("TrainPersonGroup") != 0 {
		t.Error("expected no training after failed listing")
	}
}
