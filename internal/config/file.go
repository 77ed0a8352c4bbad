package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration (flaxsim.yaml)
type File struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`
	Artifacts  ArtifactConfig   `yaml:"artifacts"`
}

// DefaultFile returns a File populated with every default
func DefaultFile() File {
	return File{
		Simulation: Default(),
		Storage:    DefaultStorageConfig(),
		Artifacts:  DefaultArtifactConfig(),
	}
}

// LoadFile reads a YAML configuration file on top of the defaults.
// Keys absent from the file keep their default values; a phase's environment
// block, when present, replaces the default block for that phase.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultFile()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks every section
func (f File) Validate() error {
	if err := f.Simulation.Validate(); err != nil {
		return err
	}
	if err := f.Storage.Validate(); err != nil {
		return err
	}
	return f.Artifacts.Validate()
}

// Marshal renders the configuration as YAML
func (f File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveDefault writes the default configuration to path.
// It refuses to overwrite an existing file unless force is set.
func SaveDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	data, err := DefaultFile().Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	header := []byte("# flaxsim configuration\n# Generated with `flaxsim config init`; edit values as needed.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
