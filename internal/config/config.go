package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrInvalidTempDir = errors.New("invalid temporary directory")

type Config struct {
	DestinationBucket string
	TempDir           string
	FailureTopicArn   string
	MetricsNamespace  string
	StackName         string
	LogLevel          string
}

// Load reads the function configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		DestinationBucket: getenv("DESTINATION_BUCKET", ""),
		TempDir:           getenv("THUMBNAIL_TEMP_DIR", os.TempDir()),
		FailureTopicArn:   getenv("FAILURE_TOPIC_ARN", ""),
		MetricsNamespace:  getenv("METRICS_NAMESPACE", ""),
		StackName:         getenv("STACK_NAME", ""),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
	}

	info, err := os.Stat(cfg.TempDir)
	if err != nil {
		return Config{}, fmt.Errorf("%w: path=%s cause=%v", ErrInvalidTempDir, cfg.TempDir, err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("%w: path=%s is not a directory", ErrInvalidTempDir, cfg.TempDir)
	}

	return cfg, nil
}

func (c Config) NotificationsEnabled() bool {
	return c.FailureTopicArn != ""
}

func (c Config) MetricsEnabled() bool {
	return c.MetricsNamespace != ""
}

func getenv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}
