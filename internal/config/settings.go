package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "GEARSET"

// Settings are the CLI-wide options, read from flags, GEARSET_* environment
// variables and an optional settings file, in that order of precedence.
type Settings struct {
	DataDir  string `mapstructure:"data"`
	LogLevel string `mapstructure:"log_level"`
	Verbose  bool   `mapstructure:"verbose"`
}

// NewViper returns a viper instance with the settings defaults and
// environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("data", ".gearset")
	v.SetDefault("log_level", "warn")
	v.SetDefault("verbose", false)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads path when it is non-empty and decodes the result.
func LoadSettings(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
