package config

import (
	"fmt"
	"strings"
)

// StorageConfig selects where run history is persisted
type StorageConfig struct {
	// Path is a SQLite file path or a postgres:// connection URL
	// Default: .flaxsim/flaxsim.db
	Path string `yaml:"path" json:"path"`

	// Disabled skips persistence entirely
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// DefaultStorageConfig returns the default storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{Path: ".flaxsim/flaxsim.db"}
}

// IsPostgres reports whether Path is a PostgreSQL connection URL
func (c StorageConfig) IsPostgres() bool {
	return strings.HasPrefix(c.Path, "postgres://") || strings.HasPrefix(c.Path, "postgresql://")
}

// Validate checks the storage configuration
func (c StorageConfig) Validate() error {
	if !c.Disabled && strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("storage.path is required unless storage is disabled")
	}
	return nil
}

// StorageConfigFromEnv reads FLAXSIM_DB and FLAXSIM_NO_STORE on top of base
func StorageConfigFromEnv(base StorageConfig) (StorageConfig, error) {
	cfg := base
	if err := parseEnvString("FLAXSIM_DB", &cfg.Path); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("FLAXSIM_NO_STORE", &cfg.Disabled); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid storage configuration from environment: %w", err)
	}
	return cfg, nil
}

// Artifact drivers
const (
	ArtifactDriverNone   = "none"
	ArtifactDriverFS     = "fs"
	ArtifactDriverMemory = "memory"
	ArtifactDriverS3     = "s3"
)

// ArtifactConfig selects where run artifacts (CSV, summary JSON) are published
type ArtifactConfig struct {
	// Driver is one of none, fs, memory, s3
	// Default: none
	Driver string `yaml:"driver" json:"driver"`

	// Root is the base directory for the fs driver
	// Default: data
	Root string `yaml:"root" json:"root"`

	// S3 settings
	Bucket       string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Region       string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty" json:"use_path_style,omitempty"`
}

// DefaultArtifactConfig returns the default artifact configuration
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{Driver: ArtifactDriverNone, Root: "data"}
}

// Enabled reports whether artifacts are published at all
func (c ArtifactConfig) Enabled() bool {
	return c.Driver != "" && c.Driver != ArtifactDriverNone
}

// Validate checks the artifact configuration
func (c ArtifactConfig) Validate() error {
	switch c.Driver {
	case "", ArtifactDriverNone, ArtifactDriverMemory:
		return nil
	case ArtifactDriverFS:
		if strings.TrimSpace(c.Root) == "" {
			return fmt.Errorf("artifacts.root is required for the fs driver")
		}
		return nil
	case ArtifactDriverS3:
		if c.Bucket == "" {
			return fmt.Errorf("artifacts.bucket is required for the s3 driver")
		}
		return nil
	}
	return fmt.Errorf("artifacts.driver must be one of none, fs, memory, s3 (got %q)", c.Driver)
}

// ArtifactConfigFromEnv reads FLAXSIM_ARTIFACTS_* variables on top of base.
//
// Environment variables:
//   - FLAXSIM_ARTIFACTS_DRIVER: none, fs, memory or s3
//   - FLAXSIM_ARTIFACTS_ROOT: Base directory for the fs driver
//   - FLAXSIM_ARTIFACTS_BUCKET: S3 bucket
//   - FLAXSIM_ARTIFACTS_REGION: S3 region
//   - FLAXSIM_ARTIFACTS_ENDPOINT: Custom S3 endpoint (MinIO, localstack)
//   - FLAXSIM_ARTIFACTS_PATH_STYLE: Use path-style S3 addressing
func ArtifactConfigFromEnv(base ArtifactConfig) (ArtifactConfig, error) {
	cfg := base
	if err := parseEnvString("FLAXSIM_ARTIFACTS_DRIVER", &cfg.Driver); err != nil {
		return cfg, err
	}
	if err := parseEnvString("FLAXSIM_ARTIFACTS_ROOT", &cfg.Root); err != nil {
		return cfg, err
	}
	if err := parseEnvString("FLAXSIM_ARTIFACTS_BUCKET", &cfg.Bucket); err != nil {
		return cfg, err
	}
	if err := parseEnvString("FLAXSIM_ARTIFACTS_REGION", &cfg.Region); err != nil {
		return cfg, err
	}
	if err := parseEnvString("FLAXSIM_ARTIFACTS_ENDPOINT", &cfg.Endpoint); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("FLAXSIM_ARTIFACTS_PATH_STYLE", &cfg.UsePathStyle); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid artifact configuration from environment: %w", err)
	}
	return cfg, nil
}
