package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Binance is the fallback price source. Symbols are quoted against USDT.
type Binance struct {
	baseURL string
	client  *http.Client
}

// NewBinance creates the Binance feed. An empty baseURL uses the public API.
func NewBinance(baseURL string, client *http.Client) *Binance {
	if baseURL == "" {
		baseURL = "https://api.binance.com/api/v3"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Binance{baseURL: baseURL, client: client}
}

// Name returns the feed's source name for logging
func (b *Binance) Name() string {
	return "binance"
}

// GetPercentChange24h fetches the 24h ticker statistics for SYMBOLUSDT.
func (b *Binance) GetPercentChange24h(ctx context.Context, symbol string) (float64, error) {
	pair := strings.ToUpper(symbol) + "USDT"
	endpoint := fmt.Sprintf("%s/ticker/24hr?symbol=%s", b.baseURL, pair)

	body, err := fetchWithRetry(ctx, b.client, endpoint)
	if err != nil {
		return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "binance lookup failed for "+symbol, err)
	}

	var payload struct {
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "binance reply unparseable", err)
	}

	change, err := strconv.ParseFloat(payload.PriceChangePercent, 64)
	if err != nil {
		return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "binance change field unparseable", err)
	}
	return change, nil
}
