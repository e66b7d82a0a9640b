// Package main is the entry point for the ticketbridge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/ticketbridge/cmd"
	"github.com/danielolaszy/ticketbridge/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// main executes the root command and exits non-zero on failure.
func main() {
	logging.Debug("starting ticketbridge", "version", version)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
