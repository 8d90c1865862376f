package script

import (
	"context"
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/repository"
)

// RunNamed runs the script definition called name from the repository
// config of repoPath. The definition's working directory is resolved inside
// the repository.
func (e *Engine) RunNamed(ctx context.Context, repoPath, name string) (*domain.ScriptExecution, *domain.ExecutionResult, error) {
	cfg, err := repository.LoadConfig(repoPath)
	if err != nil {
		return nil, nil, err
	}

	def, ok := cfg.FindScript(name)
	if !ok {
		return nil, nil, fmt.Errorf("script '%s': %w", name, whErrors.ErrScriptNotFound)
	}

	dir := repoPath
	if def.WorkingDirectory != "" {
		dir, err = securejoin.SecureJoin(repoPath, def.WorkingDirectory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve working directory of script '%s': %w: %w", name, whErrors.ErrInvalidArgument, err)
		}
	}

	rec, err := e.CreateExecution(ctx, def.Command, dir, def.Env)
	if err != nil {
		return nil, nil, err
	}

	res, err := e.Execute(ctx, rec.ID)
	if err != nil {
		return rec, res, err
	}

	rec, err = e.Get(ctx, rec.ID)
	return rec, res, err
}
