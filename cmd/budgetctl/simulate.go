package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wedding-planner/backend/internal/cli"
)

func newSimulateCmd() *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Apply a TOML budget plan and print the breakdown after each step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := cli.LoadPlan(planFile)
			if err != nil {
				return err
			}

			results, err := cli.Simulate(plan)
			if err != nil {
				return err
			}

			title := plan.Name
			if title == "" {
				title = planFile
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle(title))
			fmt.Fprintln(out, cli.RenderBreakdown(results))
			fmt.Fprint(out, cli.RenderTotals(results[len(results)-1].Summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&planFile, "file", "f", "plan.toml", "Budget plan file")

	return cmd
}
