package config

import (
	"github.com/spf13/viper"

	"github.com/CoderDKai/workhorse/internal/constants"
)

// DefaultConfig returns a new Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Script: ScriptConfig{
			MaxConcurrent:    constants.MaxConcurrentExecutions,
			MaxContentLength: constants.MaxScriptContentLength,
			Shell:            constants.DefaultShell,
			DenyListExtra:    []string{},
		},
		Terminal: TerminalConfig{
			MaxSessions:       constants.MaxTerminalSessions,
			MaxHistory:        constants.MaxTerminalHistory,
			HistoryEvictBatch: constants.HistoryEvictBatch,
			Shell:             constants.DefaultShell,
			InputBuffer:       constants.TerminalInputBuffer,
			OutputBuffer:      constants.TerminalOutputBuffer,
			CloseTimeout:      constants.TerminalCloseTimeout,
		},
		Workspace: WorkspaceConfig{
			ReconcileWorkers: constants.DefaultReconcileWorkers,
		},
		Server: ServerConfig{
			Listen:       constants.DefaultListenAddr,
			ReadTimeout:  constants.DefaultReadTimeout,
			WriteTimeout: constants.DefaultWriteTimeout,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// IMPORTANT: Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("script.max_concurrent", d.Script.MaxConcurrent)
	v.SetDefault("script.max_content_length", d.Script.MaxContentLength)
	v.SetDefault("script.shell", d.Script.Shell)
	v.SetDefault("script.deny_list_extra", []string{})

	v.SetDefault("terminal.max_sessions", d.Terminal.MaxSessions)
	v.SetDefault("terminal.max_history", d.Terminal.MaxHistory)
	v.SetDefault("terminal.history_evict_batch", d.Terminal.HistoryEvictBatch)
	v.SetDefault("terminal.shell", d.Terminal.Shell)
	v.SetDefault("terminal.input_buffer", d.Terminal.InputBuffer)
	v.SetDefault("terminal.output_buffer", d.Terminal.OutputBuffer)
	v.SetDefault("terminal.close_timeout", d.Terminal.CloseTimeout.String())

	v.SetDefault("workspace.base_dir", "")
	v.SetDefault("workspace.reconcile_workers", d.Workspace.ReconcileWorkers)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout.String())

	v.SetDefault("registry.path", "")
}
