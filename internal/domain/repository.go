package domain

import "time"

// RepositoryRecord is a row of the managed-repository registry.
type RepositoryRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	DefaultBranch string    `json:"default_branch,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RepositoryConfig is the per-repository settings file kept in the
// management folder.
//
// Example YAML representation:
//
//	name: app
//	default_branch: main
//	auto_prune: true
//	scripts:
//	  - name: test
//	    command: go test ./...
//	    description: run unit tests
//	created_at: 2026-01-12T10:00:00Z
//	updated_at: 2026-01-12T10:00:00Z
type RepositoryConfig struct {
	Name          string             `yaml:"name" json:"name"`
	DefaultBranch string             `yaml:"default_branch,omitempty" json:"default_branch,omitempty"`
	AutoPrune     bool               `yaml:"auto_prune" json:"auto_prune"`
	Scripts       []ScriptDefinition `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	CreatedAt     time.Time          `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `yaml:"updated_at" json:"updated_at"`
}

// FindScript returns the script definition named name.
func (c *RepositoryConfig) FindScript(name string) (ScriptDefinition, bool) {
	for _, s := range c.Scripts {
		if s.Name == name {
			return s, true
		}
	}
	return ScriptDefinition{}, false
}

// ScriptDefinition is a named script a repository declares.
// WorkingDirectory is relative to the repository root.
type ScriptDefinition struct {
	Name             string            `yaml:"name" json:"name"`
	Command          string            `yaml:"command" json:"command"`
	Description      string            `yaml:"description,omitempty" json:"description,omitempty"`
	WorkingDirectory string            `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`
	Env              map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}
