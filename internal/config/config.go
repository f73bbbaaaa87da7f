// Package config assembles CLI settings from the process environment, the
// project's .env file and the runtime config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/fal-labs/falrun/internal/platform/logging"
	"github.com/fal-labs/falrun/internal/platform/objectstore"
	"github.com/fal-labs/falrun/internal/teleport"
)

const (
	DotEnvFile         = ".env"
	DefaultRuntimeFile = "fal_runtime.yml"
)

// Environment holds the FAL_* variables read by the CLI.
type Environment struct {
	ProjectDir  string `env:"FAL_PROJECT_DIR,default=."`
	Environment string `env:"FAL_ENVIRONMENT,default=local"`
	MachineType string `env:"FAL_MACHINE_TYPE,default=S"`
	RuntimeFile string `env:"FAL_RUNTIME_CONFIG,default=fal_runtime.yml"`
	Inventory   string `env:"FAL_INVENTORY"`
	SourceDir   string `env:"FAL_SOURCE_DIR"`

	// Teleport is enabled when FAL_TELEPORT_FORMAT is set.
	TeleportFormat   string `env:"FAL_TELEPORT_FORMAT"`
	TeleportType     string `env:"FAL_TELEPORT_TYPE,default=local"`
	TeleportPath     string `env:"FAL_TELEPORT_LOCAL_PATH,default=.fal/teleport"`
	TeleportBucket   string `env:"FAL_TELEPORT_S3_BUCKET"`
	TeleportTemplate string `env:"FAL_TELEPORT_RELATION_TEMPLATE"`
}

type Config struct {
	Env     Environment
	Logging logging.Config
	// Teleport is nil when teleport is disabled.
	Teleport *teleport.Info
}

// Load reads projectDir/.env into the process environment without
// overriding variables that are already set, then builds the config. An
// empty projectDir falls back to FAL_PROJECT_DIR.
func Load(fs afero.Fs, projectDir string) (Config, error) {
	if strings.TrimSpace(projectDir) == "" {
		projectDir = os.Getenv("FAL_PROJECT_DIR")
	}
	if strings.TrimSpace(projectDir) == "" {
		projectDir = "."
	}
	if err := applyDotEnv(fs, filepath.Join(projectDir, DotEnvFile)); err != nil {
		return Config{}, err
	}

	var e Environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	e.ProjectDir = projectDir
	if strings.TrimSpace(e.Environment) == "" {
		e.Environment = "local"
	}
	if strings.TrimSpace(e.RuntimeFile) == "" {
		e.RuntimeFile = DefaultRuntimeFile
	}

	logCfg, err := logging.ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Env: e, Logging: logCfg}

	if strings.TrimSpace(e.TeleportFormat) != "" {
		info, err := teleportInfo(e)
		if err != nil {
			return Config{}, err
		}
		cfg.Teleport = &info
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Env.ProjectDir) == "" {
		return errors.New("project dir is required")
	}
	if strings.TrimSpace(c.Env.Environment) == "" {
		return errors.New("FAL_ENVIRONMENT is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Teleport != nil {
		if _, err := teleport.StorageOptions(*c.Teleport); err != nil {
			return err
		}
	}
	return nil
}

// RuntimePath resolves the runtime config file against the project dir.
func (c Config) RuntimePath() string {
	if filepath.IsAbs(c.Env.RuntimeFile) {
		return c.Env.RuntimeFile
	}
	return filepath.Join(c.Env.ProjectDir, c.Env.RuntimeFile)
}

func teleportInfo(e Environment) (teleport.Info, error) {
	info := teleport.Info{
		Format:           strings.ToLower(strings.TrimSpace(e.TeleportFormat)),
		RelationTemplate: e.TeleportTemplate,
		Credentials:      teleport.Credentials{Type: teleport.CredentialsType(strings.ToLower(e.TeleportType))},
	}
	switch info.Credentials.Type {
	case teleport.CredentialsLocal:
		path := e.TeleportPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.ProjectDir, path)
		}
		info.Credentials.LocalPath = path
	case teleport.CredentialsRemoteS3:
		s3, err := objectstore.ConfigFromEnv()
		if err != nil {
			return teleport.Info{}, fmt.Errorf("teleport s3: %w", err)
		}
		if strings.TrimSpace(e.TeleportBucket) == "" {
			return teleport.Info{}, errors.New("FAL_TELEPORT_S3_BUCKET is required for remote_s3 teleport")
		}
		scheme := "https://"
		if !s3.UseSSL {
			scheme = "http://"
		}
		info.Credentials.S3Bucket = e.TeleportBucket
		info.Credentials.S3Region = s3.Region
		info.Credentials.S3Endpoint = scheme + s3.Endpoint
		info.Credentials.S3AccessKeyID = s3.AccessKey
		info.Credentials.S3AccessKey = s3.SecretKey
		info.Credentials.S3Token = s3.SessionToken
	default:
		return teleport.Info{}, fmt.Errorf("%w: Teleport storage type %s not supported", teleport.ErrUnsupportedCredentials, e.TeleportType)
	}
	return info, nil
}

// applyDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func applyDotEnv(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return err
	}
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	vars, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
