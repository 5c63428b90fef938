// Package pricefeed provides the realized-price-movement boundary used by
// prediction auto-evaluation: a primary and a fallback HTTP source behind a
// failover chain.
package pricefeed

import (
	"context"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Feed reports the realized 24-hour percent price change for a symbol.
type Feed interface {
	// Name returns the feed's source name for logging
	Name() string

	// GetPercentChange24h returns the symbol's 24h percent change.
	// A lookup failure returns an error; callers must leave dependent
	// records pending rather than guess.
	GetPercentChange24h(ctx context.Context, symbol string) (float64, error)
}

// Chain tries each feed in order, returning the first success.
type Chain struct {
	feeds []Feed
}

// NewChain builds a failover chain, primary first.
func NewChain(feeds ...Feed) *Chain {
	return &Chain{feeds: feeds}
}

// Name returns the chain's source name for logging
func (c *Chain) Name() string {
	return "chain"
}

// GetPercentChange24h queries each source in order until one answers.
func (c *Chain) GetPercentChange24h(ctx context.Context, symbol string) (float64, error) {
	var lastErr error
	for _, feed := range c.feeds {
		if ctx.Err() != nil {
			return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "price lookup canceled", ctx.Err())
		}
		change, err := feed.GetPercentChange24h(ctx, symbol)
		if err == nil {
			return change, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = types.NewError(types.FEED_UNAVAILABLE, "no price feeds configured")
	}
	return 0, types.WrapError(types.FEED_LOOKUP_FAILED, "all price feeds failed for "+symbol, lastErr)
}
