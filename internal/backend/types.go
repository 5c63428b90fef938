package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// AnalysisRequest is the uniform task handed to every backend.
// Data carries the typed-enough market payload (indicators, prices);
// Context carries the advisory bundle assembled from shared memory.
type AnalysisRequest struct {
	TaskType types.TaskType `json:"task_type"`
	Symbol   string         `json:"symbol,omitempty"`
	Prompt   string         `json:"prompt"`
	Data     map[string]any `json:"data,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

// VerdictKind tags how a backend's reply was interpreted.
type VerdictKind string

const (
	// VerdictStructured means the reply parsed into the expected fields.
	VerdictStructured VerdictKind = "structured"
	// VerdictRaw means the reply was not valid JSON and is carried as text.
	// Downstream code must handle this case explicitly instead of silently
	// coercing model prose into numbers.
	VerdictRaw VerdictKind = "raw"
)

// Verdict is a single backend's answer to an analysis request.
type Verdict struct {
	Kind       VerdictKind     `json:"kind"`
	Direction  types.Direction `json:"direction"`
	Confidence float64         `json:"confidence"`
	KeyFactors []string        `json:"key_factors,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	Raw        string          `json:"raw_response,omitempty"`
	Extra      map[string]any  `json:"extra,omitempty"`
}

// IsStructured reports whether the verdict carries parsed fields.
func (v *Verdict) IsStructured() bool {
	return v.Kind == VerdictStructured
}

// NewRawVerdict wraps an unparseable reply. The neutral direction and low
// confidence keep raw verdicts from dominating any aggregation they are
// allowed into.
func NewRawVerdict(text string) *Verdict {
	summary := strings.TrimSpace(text)
	if len(summary) > 200 {
		summary = summary[:200]
	}
	return &Verdict{
		Kind:       VerdictRaw,
		Direction:  types.DirectionNeutral,
		Confidence: 0.3,
		Summary:    summary,
		Raw:        text,
	}
}

// ParseVerdict interprets a backend reply. JSON replies (possibly wrapped in
// markdown fences) become structured verdicts; anything else becomes a raw
// verdict rather than an error.
func ParseVerdict(text string) *Verdict {
	jsonStr, err := ExtractJSON(text)
	if err != nil {
		return NewRawVerdict(text)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return NewRawVerdict(text)
	}

	v := &Verdict{
		Kind:       VerdictStructured,
		Direction:  types.DirectionNeutral,
		Confidence: 0.5,
		Extra:      map[string]any{},
	}

	for key, val := range fields {
		switch key {
		case "direction":
			if s, ok := val.(string); ok {
				v.Direction = types.ParseDirection(s)
			}
		case "confidence":
			if f, ok := toFloat(val); ok {
				v.Confidence = clamp01(f)
			}
		case "key_factors", "factors":
			v.KeyFactors = toStrings(val)
		case "summary", "reasoning":
			if s, ok := val.(string); ok && v.Summary == "" {
				v.Summary = s
			}
		default:
			v.Extra[key] = val
		}
	}

	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
