package main

import (
	"fmt"

	"github.com/phdev/briefing/internal/presentation/graph"
	"github.com/phdev/briefing/pkg/wizard"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the briefing steps and their transitions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := wizard.Flow()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(table, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
