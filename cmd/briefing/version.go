package main

import (
	"fmt"
	"strings"

	"github.com/phdev/briefing"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of briefing",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "briefing version %s\n", strings.TrimSpace(briefing.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
