package config

import (
	"os"
	"path/filepath"

	"forgefit/internal/models"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DB       DBConfig           `toml:"database"`
	Log      LogConfig          `toml:"log"`
	Profile  models.UserProfile `toml:"profile"`
	Schedule ScheduleConfig     `toml:"schedule"`
}

type DBConfig struct {
	ConnectionString string `toml:"connection_string"` // The entire DB connection string.
	DevMode          bool   `toml:"-"`
}

type LogConfig struct {
	File  string `toml:"file,omitempty"`
	Level string `toml:"level,omitempty"`
}

type ScheduleConfig struct {
	Weekdays []int `toml:"weekdays"` // 1=Monday .. 7=Sunday
}

// ConfigDir returns the per-user config directory, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "forgefit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Returns the path to the config file.
func GetConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Reads the configuration from the config file.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Check for a DEV_MODE environment variable.
	if os.Getenv("DEV_MODE") == "true" {
		cfg.DB.ConnectionString = "file:./local.db?cache=shared&mode=rwc"
		cfg.DB.DevMode = true
	}

	if cfg.Profile.Experience == "" {
		cfg.Profile.Experience = models.DifficultyBeginner
	}
	if cfg.Profile.MuscleFrequency == "" {
		cfg.Profile.MuscleFrequency = models.FrequencyAuto
	}
	return &cfg, nil
}
