package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/CoderDKai/workhorse/internal/errors"
)

// newViperInstance creates a Viper instance with the WORKHORSE_ environment
// prefix, key replacer and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("WORKHORSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration for the repository at repoPath. An empty repoPath
// skips the project layer.
//
// Missing config files are not errors; only unreadable or invalid ones are.
func Load(ctx context.Context, repoPath string) (*Config, error) {
	v := newViperInstance()

	if err := mergeGlobalConfig(v); err != nil {
		return nil, err
	}

	if repoPath != "" {
		if err := mergeConfigFile(v, ProjectConfigPath(repoPath)); err != nil {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Int("script.max_concurrent", cfg.Script.MaxConcurrent).
		Int("terminal.max_sessions", cfg.Terminal.MaxSessions).
		Str("server.listen", cfg.Server.Listen).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific files. Either path may be
// empty to skip that layer.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		if err := mergeConfigFile(v, globalConfigPath); err != nil {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		if err := mergeConfigFile(v, projectConfigPath); err != nil {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

func mergeGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		// No home directory; defaults and env still apply.
		return nil //nolint:nilerr // global config is optional
	}
	if err := mergeConfigFile(v, path); err != nil {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// mergeConfigFile merges path into v, ignoring files that do not exist.
func mergeConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // missing layer is skipped
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
