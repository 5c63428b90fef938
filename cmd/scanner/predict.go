package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/learning"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Record and evaluate market predictions",
}

var (
	recordSymbol     string
	recordDirection  string
	recordConfidence float64
	recordBackend    string
	recordStrategy   string
	recordPrice      float64
)

var predictRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Store a prediction for later evaluation",
	RunE:  runPredictRecord,
}

var (
	evaluateID      string
	evaluateOutcome string
	evaluatePrice   float64
)

var predictEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Settle a prediction with its observed outcome",
	Long: `Evaluate sets a prediction's outcome exactly once. Evaluating an
already-settled or unknown id reports "unchanged" rather than failing.`,
	RunE: runPredictEvaluate,
}

func init() {
	predictRecordCmd.Flags().StringVarP(&recordSymbol, "symbol", "s", "", "Asset symbol")
	predictRecordCmd.Flags().StringVarP(&recordDirection, "direction", "d", "", "Predicted direction (BULLISH|BEARISH|NEUTRAL)")
	predictRecordCmd.Flags().Float64Var(&recordConfidence, "confidence", 0.5, "Confidence in [0,1]")
	predictRecordCmd.Flags().StringVar(&recordBackend, "backend", "", "Originating backend name")
	predictRecordCmd.Flags().StringVar(&recordStrategy, "strategy", "consensus", "Originating strategy")
	predictRecordCmd.Flags().Float64Var(&recordPrice, "price", 0, "Price at prediction time")
	predictRecordCmd.MarkFlagRequired("symbol")
	predictRecordCmd.MarkFlagRequired("direction")
	predictRecordCmd.MarkFlagRequired("backend")

	predictEvaluateCmd.Flags().StringVar(&evaluateID, "id", "", "Prediction id")
	predictEvaluateCmd.Flags().StringVar(&evaluateOutcome, "outcome", "", "Outcome (CORRECT|INCORRECT|PARTIAL)")
	predictEvaluateCmd.Flags().Float64Var(&evaluatePrice, "price", 0, "Price at evaluation time")
	predictEvaluateCmd.MarkFlagRequired("id")
	predictEvaluateCmd.MarkFlagRequired("outcome")

	predictCmd.AddCommand(predictRecordCmd)
	predictCmd.AddCommand(predictEvaluateCmd)
}

func runPredictRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	direction := types.ParseDirection(recordDirection)

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.engine.RecordPrediction(ctx, learning.RecordInput{
		Symbol:     strings.ToUpper(recordSymbol),
		Direction:  direction,
		Confidence: recordConfidence,
		Backend:    recordBackend,
		Strategy:   recordStrategy,
		PriceAt:    recordPrice,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runPredictEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	outcome := types.Outcome(strings.ToUpper(evaluateOutcome))
	if !outcome.IsValid() {
		return types.NewError(types.BACKEND_INVALID_INPUT, "unknown outcome: "+evaluateOutcome)
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	changed, err := a.engine.EvaluatePrediction(ctx, types.ID(evaluateID), outcome, evaluatePrice)
	if err != nil {
		return err
	}

	if changed {
		fmt.Fprintln(cmd.OutOrStdout(), "evaluated")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
	}
	return nil
}
