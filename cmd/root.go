// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package cmd is a CLI tool demonstrating the cassowary layout solver.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tangramlabs/cassowary"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "cassowary",
	Short:   "cassowary resolves declarative box layouts with an incremental linear constraint solver",
	Version: buildString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
}

func buildString() string {
	return fmt.Sprintf("%s (%s %s/%s)", cassowary.Version.String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
