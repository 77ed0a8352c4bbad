package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables recognized by ApplyEnv
const (
	EnvTotalDays        = "FLAXSIM_TOTAL_DAYS"
	EnvNumPlants        = "FLAXSIM_NUM_PLANTS"
	EnvSeed             = "FLAXSIM_SEED"
	EnvErrorsEnabled    = "FLAXSIM_ERRORS_ENABLED"
	EnvErrorProbability = "FLAXSIM_ERROR_PROBABILITY"
)

// ApplyEnv overlays FLAXSIM_* environment variables onto cfg and re-validates it.
//
// Environment variables:
//   - FLAXSIM_TOTAL_DAYS: Number of simulated days
//   - FLAXSIM_NUM_PLANTS: Number of plants
//   - FLAXSIM_SEED: Random seed (0 = pick at startup)
//   - FLAXSIM_ERRORS_ENABLED: Enable fault injection
//   - FLAXSIM_ERROR_PROBABILITY: Daily fault probability (0-1)
//
// Returns an error if any environment variable has an invalid value.
func ApplyEnv(cfg *SimulationConfig) error {
	if err := parseEnvInt(EnvTotalDays, &cfg.TotalDays); err != nil {
		return err
	}
	if err := parseEnvInt(EnvNumPlants, &cfg.NumPlants); err != nil {
		return err
	}
	if err := parseEnvInt64(EnvSeed, &cfg.Seed); err != nil {
		return err
	}
	if err := parseEnvBool(EnvErrorsEnabled, &cfg.Errors.Enabled); err != nil {
		return err
	}
	if err := parseEnvFloat(EnvErrorProbability, &cfg.Errors.Probability); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid simulation configuration from environment: %w", err)
	}
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvInt64(key string, dest *int64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}
