// Package config holds runtime configuration for the telescopecm CLI.
// Values are populated from .telescopecm.yaml, TCM_* env vars, and CLI flags.
package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// Config is the resolved runtime configuration.
type Config struct {
	// DatabasePath is the SQLite database holding the configuration records.
	DatabasePath string `mapstructure:"database_path" validate:"required"`

	// SysdefPath is the topology definition document.
	SysdefPath string `mapstructure:"sysdef_path" validate:"required"`

	// HookupType selects the topology to resolve against; empty uses the
	// document's default.
	HookupType string `mapstructure:"hookup_type"`

	LogLevel         string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogHumanReadable bool   `mapstructure:"log_human_readable"`
}

// New returns a viper instance with the defaults, config-file search path and
// TCM_* environment binding applied. The CLI binds its flags on top of this.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("database_path", "telescopecm.db")
	v.SetDefault("sysdef_path", "sysdef.yaml")
	v.SetDefault("hookup_type", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_human_readable", true)

	v.SetConfigName(".telescopecm")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("TCM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file if one is present and unmarshals the resolved
// values. A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, tcmerrors.NewParseError(v.ConfigFileUsed(), 0, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tcmerrors.NewParseError(v.ConfigFileUsed(), 0, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, tcmerrors.NewValidationError("config", err.Error(), err)
	}
	return &cfg, nil
}
