// Package main is the capstan command-line entry point.
package main

import (
	"os"

	"github.com/prismforge/capstan/internal/cli"
)

// Set at build time via -ldflags.
var (
	version   = "0.1.0"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildDate = buildDate
	cli.GitCommit = gitCommit

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
