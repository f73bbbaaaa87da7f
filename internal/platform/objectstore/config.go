package objectstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fal-labs/falrun/internal/platform/env"
)

type Config struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseSSL       bool
	DialTimeout  time.Duration
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("FAL_S3_USE_SSL", true)
	if err != nil {
		return Config{}, err
	}
	dialTimeout, err := env.Duration("FAL_S3_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:     env.String("FAL_S3_ENDPOINT", "s3.amazonaws.com"),
		AccessKey:    env.String("FAL_S3_ACCESS_KEY_ID", ""),
		SecretKey:    env.String("FAL_S3_ACCESS_KEY", ""),
		SessionToken: env.String("FAL_S3_SESSION_TOKEN", ""),
		Region:       env.String("FAL_S3_REGION", "us-east-1"),
		UseSSL:       useSSL,
		DialTimeout:  dialTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}

// NormalizeEndpoint strips an http(s) scheme from an endpoint URL and reports
// whether TLS is implied by it.
func NormalizeEndpoint(raw string, useSSL bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "https://"), "/"), true
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "http://"), "/"), false
	default:
		return raw, useSSL
	}
}
