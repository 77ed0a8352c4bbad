package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/storage"
)

// defaultConfigPath is read when --config is not given and the file exists
const defaultConfigPath = "flaxsim.yaml"

var (
	cfgPath string
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flaxsim",
	Short: "Flax greenhouse growth simulator",
	Long: `flaxsim simulates flax plants growing in a greenhouse through germination,
growth, flowering and ripening.

Every day the greenhouse environment (temperature, ventilation, irrigation,
light hours) is sampled, occasionally pushed out of its optimal range, and
each plant grows according to how close the environment is to optimal.

Runs are stored in a local SQLite database (or PostgreSQL) so they can be
listed and inspected later.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: ./flaxsim.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path or postgres:// URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log simulation diagnostics to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, FLAXSIM_* variables and --db
func loadConfig() (*config.File, error) {
	var file *config.File
	path := cfgPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		file = loaded
	} else {
		def := config.DefaultFile()
		file = &def
	}

	if err := config.ApplyEnv(&file.Simulation); err != nil {
		return nil, err
	}
	storageCfg, err := config.StorageConfigFromEnv(file.Storage)
	if err != nil {
		return nil, err
	}
	file.Storage = storageCfg
	artifactCfg, err := config.ArtifactConfigFromEnv(file.Artifacts)
	if err != nil {
		return nil, err
	}
	file.Artifacts = artifactCfg

	if dbPath != "" {
		file.Storage.Path = dbPath
		file.Storage.Disabled = false
	}
	return file, nil
}

func mustLoadConfig() *config.File {
	file, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return file
}

// mustOpenStore opens the run store for the read-only commands
func mustOpenStore(ctx context.Context, file *config.File) storage.RunStore {
	if file.Storage.Disabled {
		fmt.Fprintf(os.Stderr, "Error: storage is disabled in the configuration\n")
		os.Exit(1)
	}
	store, err := storage.Open(ctx, file.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

// newLogger returns the diagnostics logger selected by --verbose
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
