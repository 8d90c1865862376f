package config

import (
	"github.com/CoderDKai/workhorse/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - script.max_concurrent and script.max_content_length must be positive
//   - terminal.max_sessions, max_history and the channel buffers must be positive
//   - terminal.history_evict_batch must be between 1 and max_history
//   - terminal.close_timeout must be positive
//   - both shells must be set
//   - workspace.reconcile_workers must be positive
//   - server.listen must be set and timeouts must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateScriptConfig(&cfg.Script); err != nil {
		return err
	}
	if err := validateTerminalConfig(&cfg.Terminal); err != nil {
		return err
	}
	if cfg.Workspace.ReconcileWorkers < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidWorkspace,
			"workspace.reconcile_workers must be positive, got %d", cfg.Workspace.ReconcileWorkers)
	}
	return validateServerConfig(&cfg.Server)
}

func validateScriptConfig(cfg *ScriptConfig) error {
	if cfg.MaxConcurrent < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidScript,
			"script.max_concurrent must be positive, got %d", cfg.MaxConcurrent)
	}
	if cfg.MaxContentLength < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidScript,
			"script.max_content_length must be positive, got %d", cfg.MaxContentLength)
	}
	if cfg.Shell == "" {
		return errors.Wrap(errors.ErrConfigInvalidScript, "script.shell must not be empty")
	}
	return nil
}

func validateTerminalConfig(cfg *TerminalConfig) error {
	if cfg.MaxSessions < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidTerminal,
			"terminal.max_sessions must be positive, got %d", cfg.MaxSessions)
	}
	if cfg.MaxHistory < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidTerminal,
			"terminal.max_history must be positive, got %d", cfg.MaxHistory)
	}
	if cfg.HistoryEvictBatch < 1 || cfg.HistoryEvictBatch > cfg.MaxHistory {
		return errors.Wrapf(errors.ErrConfigInvalidTerminal,
			"terminal.history_evict_batch must be between 1 and %d, got %d", cfg.MaxHistory, cfg.HistoryEvictBatch)
	}
	if cfg.InputBuffer < 1 || cfg.OutputBuffer < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidTerminal,
			"terminal buffers must be positive, got input=%d output=%d", cfg.InputBuffer, cfg.OutputBuffer)
	}
	if cfg.CloseTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTerminal,
			"terminal.close_timeout must be positive, got %s", cfg.CloseTimeout)
	}
	if cfg.Shell == "" {
		return errors.Wrap(errors.ErrConfigInvalidTerminal, "terminal.shell must not be empty")
	}
	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Listen == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.listen must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server timeouts must be positive, got read=%s write=%s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	return nil
}
