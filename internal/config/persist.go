package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the application settings file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix prefixes every environment override (FASTSIM_*).
const EnvPrefix = "FASTSIM"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (FASTSIM_*)
// 3. User config file (~/.config/fastsim/config.yaml)
// 4. System config file (/etc/fastsim/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "fastsim"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".fastsim"))
	}
	viper.AddConfigPath("/etc/fastsim")

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("repo_dir", Global.RepoDir)
	viper.SetDefault("worker_bin", Global.WorkerBin)
	viper.SetDefault("container_image", "docker:mfasel/cc7-alice:latest")
	viper.SetDefault("grid_root", "/alice/cern.ch/user")
	viper.SetDefault("copy_attempts", 3)
	viper.SetDefault("submit_job", true)
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if dir := viper.GetString("repo_dir"); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		Global.RepoDir = dir
	}
	if bin := viper.GetString("worker_bin"); bin != "" {
		Global.WorkerBin = bin
	}
	if image := viper.GetString("container_image"); image != "" {
		Global.ContainerImage = image
	}
	if root := viper.GetString("grid_root"); root != "" {
		Global.GridRoot = root
	}
	if attempts := viper.GetInt("copy_attempts"); attempts > 0 {
		Global.CopyAttempts = attempts
	}
	if submitJob := viper.GetBool("submit_job"); !submitJob {
		Global.SubmitJob = submitJob
	}
}
