// Package main provides the entry point for the workhorse CLI.
package main

import (
	"context"
	"os"

	"github.com/CoderDKai/workhorse/internal/cli"
)

// Set at build time via -ldflags.
//
//nolint:gochecknoglobals // Populated by the linker
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
