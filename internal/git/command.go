// Package git implements the version-control collaborator of workhorse on
// top of the git CLI.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// RunCommand executes a git command in the specified directory and returns
// its trimmed stdout. Failures wrap ErrGitOperation and carry stderr.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally
	cmd.Dir = workDir
	// Never block on a credential prompt.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("dir", workDir).
		Str("command", "git "+shellquote.Join(args...)).
		Msg("running git")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), whErrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], whErrors.ErrGitOperation)
	}

	return strings.TrimSpace(stdout.String()), nil
}
