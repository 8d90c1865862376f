package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CoderDKai/workhorse/internal/ctxutil"
)

// Status returns the working tree status of path.
func (c *CLI) Status(ctx context.Context, path string) (*Status, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	output, err := RunCommand(ctx, path, "status", "--porcelain", "-uall", "--branch")
	if err != nil {
		return nil, fmt.Errorf("failed to get status of '%s': %w", path, err)
	}
	status := parseGitStatus(output)

	gitDir, err := RunCommand(ctx, path, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get status of '%s': %w", path, err)
	}
	status.State = detectState(gitDir)

	return status, nil
}

// stateMarkers map files in the git directory to the operation they signal.
// The first existing marker wins.
//
//nolint:gochecknoglobals // read-only lookup table
var stateMarkers = []struct {
	name  string
	state RepositoryState
}{
	{"rebase-merge", StateRebase},
	{"rebase-apply", StateRebase},
	{"MERGE_HEAD", StateMerge},
	{"CHERRY_PICK_HEAD", StateCherryPick},
	{"REVERT_HEAD", StateRevert},
	{"BISECT_LOG", StateBisect},
}

func detectState(gitDir string) RepositoryState {
	for _, m := range stateMarkers {
		if _, err := os.Stat(filepath.Join(gitDir, m.name)); err == nil {
			return m.state
		}
	}
	return StateClean
}

// parseGitStatus parses git status --porcelain --branch output.
func parseGitStatus(output string) *Status {
	status := &Status{Files: []FileStatus{}, State: StateClean}

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}

		// ## branch...origin/branch [ahead N, behind M]
		if strings.HasPrefix(line, "## ") {
			parseBranchLine(line, status)
			continue
		}
		if len(line) < 4 {
			continue
		}

		// XY PATH or XY ORIG -> PATH
		x, y := line[0], line[1]
		path := strings.TrimSpace(line[3:])
		var oldPath string
		if orig, dest, ok := strings.Cut(path, " -> "); ok {
			oldPath, path = orig, dest
		}

		untracked := x == '?' && y == '?'
		status.Files = append(status.Files, FileStatus{
			Path:     path,
			OldPath:  oldPath,
			Status:   line[:2],
			Staged:   !untracked && x != ' ',
			Modified: y == 'M' || x == 'M',
			New:      untracked || x == 'A',
			Deleted:  x == 'D' || y == 'D',
		})
	}

	status.Dirty = len(status.Files) > 0
	return status
}

// parseBranchLine parses the branch header of porcelain status.
func parseBranchLine(line string, status *Status) {
	line = strings.TrimPrefix(line, "## ")

	// Fresh repositories report "No commits yet on main".
	line = strings.TrimPrefix(line, "No commits yet on ")

	local, remote, found := strings.Cut(line, "...")
	status.Branch = local
	if !found {
		// "main [gone]" style headers without an upstream separator.
		if idx := strings.Index(local, " "); idx != -1 {
			status.Branch = local[:idx]
		}
		return
	}

	bracketStart := strings.Index(remote, " [")
	if bracketStart == -1 || !strings.HasSuffix(remote, "]") || len(remote) < bracketStart+4 {
		return
	}

	info := remote[bracketStart+2 : len(remote)-1]
	status.Ahead = parseAheadBehind(info, "ahead ")
	status.Behind = parseAheadBehind(info, "behind ")
}

// parseAheadBehind extracts the count from "ahead N" or "behind N".
func parseAheadBehind(info, prefix string) int {
	idx := strings.Index(info, prefix)
	if idx == -1 {
		return 0
	}

	numStr := info[idx+len(prefix):]
	if commaIdx := strings.Index(numStr, ","); commaIdx != -1 {
		numStr = numStr[:commaIdx]
	}

	n, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil {
		return 0
	}
	return n
}
