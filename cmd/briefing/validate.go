package main

import (
	"fmt"

	httpAdapter "github.com/phdev/briefing/pkg/adapters/http"
	"github.com/phdev/briefing/pkg/wizard"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow, the configuration and the API document",
	Long: `Builds the flow table (reporting dead links and unreachable steps), loads
and validates the configuration, and validates the embedded OpenAPI document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		table, err := wizard.Flow()
		if err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		fmt.Fprintf(out, "Flow is valid (%d steps) ✅\n", len(table.Steps()))

		if _, err := loadConfig(cmd); err != nil {
			return err
		}
		fmt.Fprintln(out, "Configuration is valid ✅")

		if _, err := httpAdapter.LoadSpec(cmd.Context()); err != nil {
			return fmt.Errorf("openapi: %w", err)
		}
		fmt.Fprintln(out, "OpenAPI document is valid ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
