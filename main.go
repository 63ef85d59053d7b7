package main

import (
	"log/slog"
	"os"

	"github.com/agentx-labs/extbuild/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
