package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var weightsApply bool

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show per-backend accuracy and recommended consensus weights",
	RunE:  runWeights,
}

func init() {
	weightsCmd.Flags().BoolVar(&weightsApply, "apply", false, "Push recommended weights into the orchestrator before printing")
}

func runWeights(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if weightsApply {
		if _, err := a.engine.ApplyWeights(ctx, a.orch); err != nil {
			return err
		}
	}

	entries, err := a.engine.Scores(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tCORRECT\tPARTIAL\tINCORRECT\tTOTAL\tACCURACY\tRECOMMENDED\tACTIVE")
	for _, entry := range entries {
		recommended, err := a.engine.GetRecommendedWeight(ctx, entry.Backend)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			entry.Backend,
			entry.Correct, entry.Partial, entry.Incorrect, entry.Total,
			entry.Accuracy(),
			recommended,
			a.orch.GetWeight(entry.Backend),
		)
	}
	return w.Flush()
}
