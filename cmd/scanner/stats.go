package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show backend, cache, and health statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tKIND\tPRIORITY\tCOMPLETED\tFAILED\tSUCCESS\tAVG LATENCY")
	for _, worker := range a.orch.Registry().List() {
		stats := worker.Stats()
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
			worker.Name(), worker.Kind(), worker.Priority(),
			stats.TasksCompleted, stats.TasksFailed, stats.SuccessRate, worker.AvgLatency())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	cacheStats := a.orch.Cache().Stats()
	fmt.Fprintf(out, "\nCache: %d entries, %d hits, %d misses, %d evictions, %d expirations\n",
		cacheStats.Size, cacheStats.Hits, cacheStats.Misses, cacheStats.Evictions, cacheStats.Expirations)

	health := a.orch.Registry().Health(ctx)
	fmt.Fprintf(out, "Backend health: %s (%s)\n", health.State, health.Message)

	if err := a.db.Health(ctx); err != nil {
		fmt.Fprintf(out, "Database: unhealthy (%v)\n", err)
	} else {
		fmt.Fprintln(out, "Database: healthy")
	}
	return nil
}
