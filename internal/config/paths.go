package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/errors"
)

// HomeDir returns the global workhorse directory. WORKHORSE_HOME wins over
// ~/.workhorse.
//
// Returns an error if the home directory cannot be determined.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.WorkhorseHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the configuration file inside a repository's
// management folder.
func ProjectConfigPath(repoPath string) string {
	return filepath.Join(repoPath, constants.ManagementDir, constants.GlobalConfigName)
}

// RegistryPath resolves the registry database location, falling back to
// <home>/registry.db.
func (c *Config) RegistryPath() (string, error) {
	if c.Registry.Path != "" {
		return c.Registry.Path, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.RegistryFileName), nil
}
