package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/learning"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/orchestrator"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

var (
	analyzeTask     string
	analyzeSymbol   string
	analyzePrompt   string
	analyzeData     string
	analyzeStrategy string
	analyzeTimeout  time.Duration
	analyzeRecord   bool
	analyzePrice    float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run an analysis task across the configured backends",
	Long: `Analyze dispatches a task to the backend ensemble using the chosen
strategy and prints the merged result as JSON.

Market data is passed as inline JSON or @file:

  scanner analyze --symbol BTC --task technical_analysis \
    --data '{"rsi": 28, "macd": 1.2, "price": 61250}'

With --record the merged verdict is also stored as a prediction for
later evaluation against realized price movement.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTask, "task", "t", string(types.TaskTechnicalAnalysis), "Task type")
	analyzeCmd.Flags().StringVarP(&analyzeSymbol, "symbol", "s", "", "Asset symbol (e.g. BTC)")
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "Analysis prompt for LLM backends")
	analyzeCmd.Flags().StringVarP(&analyzeData, "data", "d", "", "Market data as JSON, or @path/to/file.json")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "Dispatch strategy (default from config)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Per-call deadline (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeRecord, "record", false, "Record the verdict as a prediction")
	analyzeCmd.Flags().Float64Var(&analyzePrice, "price", 0, "Current price, stored with --record")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	taskType := types.TaskType(analyzeTask)
	if !taskType.IsValid() {
		return types.NewError(types.BACKEND_INVALID_INPUT, "unknown task type: "+analyzeTask)
	}

	strategyName := analyzeStrategy
	if strategyName == "" {
		strategyName = a.cfg.Orchestrator.DefaultStrategy
	}
	strategy, err := orchestrator.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	data, err := parseDataFlag(analyzeData)
	if err != nil {
		return err
	}

	result := a.orch.Analyze(ctx, backend.AnalysisRequest{
		TaskType: taskType,
		Symbol:   strings.ToUpper(analyzeSymbol),
		Prompt:   analyzePrompt,
		Data:     data,
	}, strategy, analyzeTimeout)

	if analyzeRecord && result.Success {
		price := analyzePrice
		if price == 0 {
			if v, ok := data["price"].(float64); ok {
				price = v
			}
		}
		id, err := a.engine.RecordPrediction(ctx, learning.RecordInput{
			Symbol:     result.Symbol,
			Direction:  result.Direction,
			Confidence: result.Confidence,
			Backend:    result.Backend,
			Strategy:   string(strategy),
			PriceAt:    price,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Recorded prediction %s\n", id)
	}

	return printJSON(cmd, result)
}

// parseDataFlag decodes the --data value, accepting inline JSON or a
// @file reference.
func parseDataFlag(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}

	payload := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		content, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return nil, types.WrapError(types.BACKEND_INVALID_INPUT, "failed to read data file", err)
		}
		payload = content
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, types.WrapError(types.BACKEND_INVALID_INPUT, "data is not valid JSON", err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
