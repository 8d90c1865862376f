package repository

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/fsutil"
)

// LoadConfig reads the repository configuration of repoPath.
// Returns ErrRepositoryNotManaged when the file does not exist.
func LoadConfig(repoPath string) (*domain.RepositoryConfig, error) {
	path := ConfigPath(repoPath)

	data, err := os.ReadFile(path) //#nosec G304 -- path is built from the management layout
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load repository config '%s': %w", repoPath, whErrors.ErrRepositoryNotManaged)
		}
		return nil, fmt.Errorf("failed to load repository config '%s': %w", repoPath, err)
	}

	var cfg domain.RepositoryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse repository config '%s': %w: %w", path, whErrors.ErrStorage, err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as the repository configuration of repoPath.
func SaveConfig(repoPath string, cfg *domain.RepositoryConfig) error {
	if cfg == nil {
		return fmt.Errorf("failed to save repository config: %w", whErrors.ErrConfigNil)
	}
	for i, s := range cfg.Scripts {
		if s.Name == "" || s.Command == "" {
			return fmt.Errorf("failed to save repository config: script #%d needs a name and a command: %w", i+1, whErrors.ErrEmptyValue)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode repository config: %w", err)
	}

	if err := fsutil.AtomicWrite(ConfigPath(repoPath), data, fsutil.FilePerm); err != nil {
		return fmt.Errorf("failed to save repository config '%s': %w", repoPath, err)
	}
	return nil
}
