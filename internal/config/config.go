// Package config resolves runtime configuration from an optional .env file,
// the process environment, and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitlit/internal/backend"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/keyring"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Where the database URL came from
const (
	SourceNone    = ""
	SourceEnv     = "env"
	SourceKeyring = "keyring"
)

// keyringLookup is replaced in tests.
var keyringLookup = keyring.Lookup

type Config struct {
	DatabaseURL       string
	DatabaseURLSource string
	AppMode           string
	DataFile          string
	DBPath            string
	ConfigDir         string
	Debug             bool
}

// Load reads envFile if it exists, then the environment. Values already set
// in the environment win over the file. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		DatabaseURL: strings.TrimSpace(os.Getenv(constants.EnvDatabaseURL)),
		AppMode:     strings.ToLower(strings.TrimSpace(os.Getenv(constants.EnvAppMode))),
		DataFile:    utils.ExpandHome(getEnv(constants.EnvDataFile, constants.DefaultDataFile)),
		DBPath:      utils.ExpandHome(getEnv(constants.EnvDBPath, constants.DefaultDBPath)),
		ConfigDir:   utils.ExpandHome(getEnv(constants.EnvConfigDir, constants.DefaultConfigDir)),
	}

	if raw := os.Getenv(constants.EnvDebug); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, raw, err)
		}
		cfg.Debug = debug
	}

	switch {
	case cfg.DatabaseURL != "":
		cfg.DatabaseURLSource = SourceEnv
	default:
		if connStr := keyringLookup(); connStr != "" {
			cfg.DatabaseURL = connStr
			cfg.DatabaseURLSource = SourceKeyring
		}
	}

	return cfg, nil
}

// BackendKey is the selector key for this configuration.
func (c *Config) BackendKey() backend.Key {
	return backend.Key{
		DatabaseURL: c.DatabaseURL,
		AppMode:     c.AppMode,
		DataFile:    c.DataFile,
	}
}

// HabitsPath is the location of the habit catalog file.
func (c *Config) HabitsPath() string {
	return filepath.Join(c.ConfigDir, constants.HabitsFileName)
}

// BackupDir is where backups of the local data file are kept.
func (c *Config) BackupDir() string {
	return filepath.Join(c.ConfigDir, constants.BackupDirName)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
