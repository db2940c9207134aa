package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "budgetctl",
		Short:        "Wedding budget tooling",
		Long:         "Simulate wedding budget plans and mint development access tokens.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}
