package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrUserConfigMissing is returned when the user configuration file does not exist.
var ErrUserConfigMissing = errors.New("user configuration not found")

// UserConfig identifies the grid user and the local working area.
type UserConfig struct {
	Username  string `mapstructure:"username"`
	LocalPath string `mapstructure:"local_path"`
}

// GridHome returns the user's remote directory: <root>/<first letter>/<user>.
func (u *UserConfig) GridHome(root string) string {
	return fmt.Sprintf("%s/%s/%s", root, u.Username[:1], u.Username)
}

// LoadUserConfig reads the user configuration file at path. Environment
// variables FASTSIM_USERNAME and FASTSIM_LOCAL_PATH override file values.
// Unknown keys are rejected.
func LoadUserConfig(path string) (*UserConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (create it with the keys 'username' and 'local_path')", ErrUserConfigMissing, path)
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ConfigType)
	v.SetEnvPrefix(EnvPrefix)
	_ = v.BindEnv("username")
	_ = v.BindEnv("local_path")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading user config %s: %w", path, err)
	}

	var uc UserConfig
	if err := v.UnmarshalExact(&uc); err != nil {
		return nil, fmt.Errorf("invalid user config %s: %w", path, err)
	}
	if uc.Username == "" {
		return nil, &FieldError{File: path, Field: "username", Reason: "is required"}
	}
	if uc.LocalPath == "" {
		return nil, &FieldError{File: path, Field: "local_path", Reason: "is required"}
	}
	return &uc, nil
}

// FieldError reports a missing or invalid configuration field.
type FieldError struct {
	File   string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q %s", e.File, e.Field, e.Reason)
}
