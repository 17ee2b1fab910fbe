package main

import (
	"os"

	"github.com/knightmare-26/jira-cli/internal/cli"
	"github.com/knightmare-26/jira-cli/internal/logging"
)

// main is the entry point for the jira-ai CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
