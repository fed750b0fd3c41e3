// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints the cassowary version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
