package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/scielo-analytics/ocametrics/cmd"
)

const version = "0.1.0"

func main() {
	root := cmd.NewRootCmd()

	// Use fang for the CLI shell: completions, manpages, --version, signal handling.
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
