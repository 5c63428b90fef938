package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// coinGeckoIDs maps common ticker symbols to CoinGecko asset ids.
// Unknown symbols fall through to the lowercased ticker, which works for
// assets whose id matches their symbol.
var coinGeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"LINK": "chainlink",
}

// CoinGecko is the primary price source.
type CoinGecko struct {
	baseURL string
	client  *http.Client
}

// NewCoinGecko creates the CoinGecko feed. An empty baseURL uses the public API.
func NewCoinGecko(baseURL string, client *http.Client) *CoinGecko {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CoinGecko{baseURL: baseURL, client: client}
}

// Name returns the feed's source name for logging
func (g *CoinGecko) Name() string {
	return "coingecko"
}

// GetPercentChange24h fetches the 24h change via the simple-price endpoint.
func (g *CoinGecko) GetPercentChange24h(ctx context.Context, symbol string) (float64, error) {
	id := coinGeckoIDs[strings.ToUpper(symbol)]
	if id == "" {
		id = strings.ToLower(symbol)
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		g.baseURL, url.QueryEscape(id))

	body, err := fetchWithRetry(ctx, g.client, endpoint)
	if err != nil {
		return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "coingecko lookup failed for "+symbol, err)
	}

	var payload map[string]struct {
		USD       float64 `json:"usd"`
		Change24h float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "coingecko reply unparseable", err)
	}

	entry, ok := payload[id]
	if !ok {
		return 0, types.NewError(types.FEED_LOOKUP_FAILED, "coingecko has no data for "+symbol)
	}
	return entry.Change24h, nil
}

// fetchWithRetry GETs the URL, retrying transient failures (network errors
// and 5xx/429 statuses) with exponential backoff.
func fetchWithRetry(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = readBody(resp)
			if err != nil {
				return err
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("status %d from %s", resp.StatusCode, endpoint)
		default:
			return backoff.Permanent(fmt.Errorf("status %d from %s", resp.StatusCode, endpoint))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newFeedBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func newFeedBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 15 * time.Second
	return b
}

func readBody(resp *http.Response) ([]byte, error) {
	const maxBody = 1 << 20
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}
