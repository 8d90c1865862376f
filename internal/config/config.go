// Package config provides configuration management for workhorse with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the caller after Load)
//  2. Environment variables (WORKHORSE_* prefix)
//  3. Project config (.workhorse/config.yaml of the repository)
//  4. Global config (~/.workhorse/config.yaml, or $WORKHORSE_HOME/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for workhorse.
type Config struct {
	// Script controls the script execution engine.
	Script ScriptConfig `yaml:"script" mapstructure:"script"`

	// Terminal controls the terminal session manager.
	Terminal TerminalConfig `yaml:"terminal" mapstructure:"terminal"`

	// Workspace controls workspace placement and bulk operations.
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`

	// Server controls the HTTP API started by 'workhorse serve'.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Registry locates the database of managed repositories.
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
}

// ScriptConfig contains settings for script execution.
type ScriptConfig struct {
	// MaxConcurrent caps the number of scripts in the running state.
	// Default: 5
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// MaxContentLength is the maximum script body size in characters.
	// Default: 10000
	MaxContentLength int `yaml:"max_content_length" mapstructure:"max_content_length"`

	// Shell runs the script file.
	// Default: "sh"
	Shell string `yaml:"shell" mapstructure:"shell"`

	// DenyListExtra adds patterns to the built-in list of blocked commands.
	DenyListExtra []string `yaml:"deny_list_extra" mapstructure:"deny_list_extra"`
}

// TerminalConfig contains settings for interactive terminal sessions.
type TerminalConfig struct {
	// MaxSessions caps tracked sessions, closed ones included.
	// Default: 10
	MaxSessions int `yaml:"max_sessions" mapstructure:"max_sessions"`

	// MaxHistory is the scrollback length per session.
	// Default: 1000
	MaxHistory int `yaml:"max_history" mapstructure:"max_history"`

	// HistoryEvictBatch is how many records are dropped on overflow.
	// Default: 100
	HistoryEvictBatch int `yaml:"history_evict_batch" mapstructure:"history_evict_batch"`

	// Shell is the program started for each session.
	// Default: "sh"
	Shell string `yaml:"shell" mapstructure:"shell"`

	// InputBuffer is the capacity of the per-session input channel.
	InputBuffer int `yaml:"input_buffer" mapstructure:"input_buffer"`

	// OutputBuffer is the capacity of the per-session output channel.
	OutputBuffer int `yaml:"output_buffer" mapstructure:"output_buffer"`

	// CloseTimeout bounds the wait for a killed shell to exit.
	// Default: 5s
	CloseTimeout time.Duration `yaml:"close_timeout" mapstructure:"close_timeout"`
}

// WorkspaceConfig contains settings for workspace management.
type WorkspaceConfig struct {
	// BaseDir is where worktrees are created when a request has no base path.
	// Empty means the parent directory of the repository.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`

	// ReconcileWorkers bounds concurrent health checks in a bulk reconcile.
	// Default: 4
	ReconcileWorkers int `yaml:"reconcile_workers" mapstructure:"reconcile_workers"`
}

// ServerConfig contains settings for the HTTP API.
type ServerConfig struct {
	// Listen is the TCP address to bind.
	// Default: "127.0.0.1:7878"
	Listen string `yaml:"listen" mapstructure:"listen"`

	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// RegistryConfig locates the managed-repository registry.
type RegistryConfig struct {
	// Path is the SQLite database file. Empty means <home>/registry.db.
	Path string `yaml:"path" mapstructure:"path"`
}
