package main

import (
	"github.com/spf13/cobra"
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Score overdue predictions and refresh backend weights",
	Long: `Evolve runs the closed-loop maintenance batch: predictions older
than the evaluation age are scored against realized price movement from
the configured feeds, old evaluated records move to compressed cold
storage, the active set is pruned to its cap, and refreshed per-backend
weights are applied.

It only runs when invoked; there is no background scheduler.`,
	RunE: runEvolve,
}

func runEvolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.engine.Evolve(ctx, a.orch)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
