package main

import (
	"context"
	"os"

	"github.com/yildizm/runlens/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := cli.NewRootCommand(version, commit, date)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
