package main

import (
	"fmt"

	"github.com/shayc/aimon/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aimon version %s\n", version.Get())
	},
}
