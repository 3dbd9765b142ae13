package cmd

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/blobstore"
	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/faceapi"
	"github.com/kozaktomas/face-groups/internal/facegroup"
	"github.com/kozaktomas/face-groups/internal/httpretry"
	"github.com/kozaktomas/face-groups/internal/logging"
)

// app holds the clients of one command run. They are built once here and
// passed explicitly to the pipelines.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	runID      string
	httpClient *http.Client
	face       *faceapi.Client
	blobs      *blobstore.Client
	service    *facegroup.Service
}

// loadConfig reads the configuration and applies root flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newApp validates the configuration and builds every client. The
// configure callback may apply command flags before validation.
func newApp(operation string, configure func(*config.Config)) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if configure != nil {
		configure(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := logging.NewLogger(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger := logging.WithOperation(base, operation, runID)

	httpClient := httpretry.NewClient(httpretry.PolicyFromConfig(cfg.HTTP), cfg.HTTP.Timeout)
	if t, ok := httpClient.Transport.(*httpretry.Transport); ok {
		t.OnRetry = func(attempt int, wait time.Duration, status int, err error) {
			logger.Warn("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Int("status", status),
				zap.Error(err))
		}
	}

	face, err := faceapi.New(cfg.Face.Endpoint, cfg.Face.APIKey,
		faceapi.WithHTTPClient(httpClient),
		faceapi.WithModels(cfg.Face.RecognitionModel, cfg.Face.DetectionModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create Face API client: %w", err)
	}
	if err := face.SetCaptureDir(captureDir); err != nil {
		return nil, err
	}

	blobs, err := blobstore.NewClient(cfg.Storage.ConnectionString, httpClient)
	if err != nil {
		return nil, err
	}

	service := facegroup.NewService(face, logging.WithOperation(base, operation, "")).
		WithRunID(runID).
		WithMaxCandidates(cfg.Identify.MaxCandidates)

	logger.Debug("configuration loaded",
		zap.String("endpoint", cfg.Face.Endpoint),
		zap.String("recognition_model", face.RecognitionModel()))

	return &app{
		cfg:        cfg,
		logger:     logger,
		runID:      runID,
		httpClient: httpClient,
		face:       face,
		blobs:      blobs,
		service:    service,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// applyGroupFlag overrides the person group id when --group is set.
func applyGroupFlag(cmd *cobra.Command, cfg *config.Config) {
	if changed(cmd, "group") {
		cfg.Enrollment.GroupID = mustGetString(cmd, "group")
	}
}

func confirmAction(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
