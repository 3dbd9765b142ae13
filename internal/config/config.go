package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Face       FaceConfig       `yaml:"face"`
	Storage    StorageConfig    `yaml:"storage"`
	Enrollment EnrollmentConfig `yaml:"enrollment"`
	Identify   IdentifyConfig   `yaml:"identify"`
	Verify     VerifyConfig     `yaml:"verify"`
	Training   TrainingConfig   `yaml:"training"`
	HTTP       HTTPConfig       `yaml:"http"`
	Web        WebConfig        `yaml:"web"`
	Log        LogConfig        `yaml:"log"`
}

// FaceConfig holds the Face API credentials. The key is only ever read from the environment.
type FaceConfig struct {
	APIKey           string `yaml:"-" env:"FACE_API_KEY"`
	Endpoint         string `yaml:"endpoint" env:"FACE_ENDPOINT_URL"`
	RecognitionModel string `yaml:"recognition_model" env:"FACE_RECOGNITION_MODEL"`
	DetectionModel   string `yaml:"detection_model" env:"FACE_DETECTION_MODEL"`
}

type StorageConfig struct {
	ConnectionString string `yaml:"-" env:"AZURE_STORAGE_CONNECTION_STRING"`
}

// EnrollmentConfig describes where enrollment images live: <Container>/<Root>/<person>/<file>.
type EnrollmentConfig struct {
	GroupID    string   `yaml:"group_id" env:"PERSON_GROUP_ID"`
	GroupName  string   `yaml:"group_name" env:"PERSON_GROUP_NAME"`
	Container  string   `yaml:"container" env:"ENROLLMENT_CONTAINER"`
	Root       string   `yaml:"root" env:"ENROLLMENT_ROOT"`
	Extensions []string `yaml:"extensions" env:"ENROLLMENT_EXTENSIONS" envSeparator:","`
}

type IdentifyConfig struct {
	ImageURL      string `yaml:"image_url" env:"IDENTIFY_IMAGE_URL"`
	Output        string `yaml:"output" env:"IDENTIFY_OUTPUT"`
	MaxCandidates int    `yaml:"max_candidates" env:"IDENTIFY_MAX_CANDIDATES"`
	MaxImageBytes int64  `yaml:"max_image_bytes" env:"IDENTIFY_MAX_IMAGE_BYTES"`
}

type VerifyConfig struct {
	Container string `yaml:"container" env:"VERIFY_CONTAINER"`
	Blob1     string `yaml:"blob1" env:"VERIFY_BLOB1"`
	Blob2     string `yaml:"blob2" env:"VERIFY_BLOB2"`
}

type TrainingConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"TRAINING_POLL_INTERVAL"`
	MaxPolls     int           `yaml:"max_polls" env:"TRAINING_MAX_POLLS"`
	Timeout      time.Duration `yaml:"timeout" env:"TRAINING_TIMEOUT"`
}

// HTTPConfig is the retry policy shared by every outgoing HTTP call.
type HTTPConfig struct {
	RetryTotal      int           `yaml:"retry_total" env:"HTTP_RETRY_TOTAL"`
	BackoffFactor   time.Duration `yaml:"backoff_factor" env:"HTTP_BACKOFF_FACTOR"`
	MaxBackoff      time.Duration `yaml:"max_backoff" env:"HTTP_MAX_BACKOFF"`
	StatusForcelist []int         `yaml:"status_forcelist" env:"HTTP_RETRY_STATUSES" envSeparator:","`
	Timeout         time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT"`
}

type WebConfig struct {
	Host           string   `yaml:"host" env:"WEB_HOST"`
	Port           int      `yaml:"port" env:"WEB_PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"WEB_ALLOWED_ORIGINS" envSeparator:","`

	// ImageHosts lists the hosts POST /identify may fetch {"url": ...} images
	// from. Empty disables URL mode.
	ImageHosts []string `yaml:"image_hosts" env:"WEB_IMAGE_HOSTS" envSeparator:","`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load builds the configuration from the embedded defaults, an optional YAML
// file and the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		// embedded file, so this only fails on a broken build
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}

	cfg.Face.Endpoint = strings.TrimSuffix(cfg.Face.Endpoint, "/")
	return cfg, nil
}

// Validate checks the settings every command needs. All missing variables
// are reported at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Face.APIKey == "" {
		missing = append(missing, "FACE_API_KEY")
	}
	if c.Face.Endpoint == "" {
		missing = append(missing, "FACE_ENDPOINT_URL")
	}
	if c.Storage.ConnectionString == "" {
		missing = append(missing, "AZURE_STORAGE_CONNECTION_STRING")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEnrollment checks the settings needed to populate a person group.
func (c *Config) ValidateEnrollment() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Enrollment.GroupID == "" {
		return fmt.Errorf("person group id is required (PERSON_GROUP_ID or --group)")
	}
	if c.Enrollment.Container == "" {
		return fmt.Errorf("enrollment container is required (ENROLLMENT_CONTAINER or --container)")
	}
	if c.Enrollment.Root == "" {
		return fmt.Errorf("enrollment root prefix is required (ENROLLMENT_ROOT or --root)")
	}
	return nil
}

// DisplayName returns the display name for the person group, falling back to its id.
func (c *EnrollmentConfig) DisplayName() string {
	if c.GroupName == "" {
		return c.GroupID
	}
	return c.GroupName
}
