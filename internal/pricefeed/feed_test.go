package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// stubFeed is an in-memory Feed for chain tests.
type stubFeed struct {
	name   string
	change float64
	err    error
	calls  int
}

func (s *stubFeed) Name() string { return s.name }

func (s *stubFeed) GetPercentChange24h(ctx context.Context, symbol string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.change, nil
}

func TestChain_PrimaryWins(t *testing.T) {
	primary := &stubFeed{name: "primary", change: 3.5}
	fallback := &stubFeed{name: "fallback", change: -1.0}

	chain := NewChain(primary, fallback)
	change, err := chain.GetPercentChange24h(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, 3.5, change)
	assert.Equal(t, 0, fallback.calls, "fallback must not be queried when primary answers")
}

func TestChain_FallsBack(t *testing.T) {
	primary := &stubFeed{name: "primary", err: errors.New("down")}
	fallback := &stubFeed{name: "fallback", change: -2.2}

	chain := NewChain(primary, fallback)
	change, err := chain.GetPercentChange24h(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, -2.2, change)
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain(
		&stubFeed{name: "a", err: errors.New("down")},
		&stubFeed{name: "b", err: errors.New("also down")},
	)

	_, err := chain.GetPercentChange24h(context.Background(), "BTC")
	require.Error(t, err)
	assert.Equal(t, types.FEED_LOOKUP_FAILED, types.CodeOf(err))
}

func TestChain_Empty(t *testing.T) {
	_, err := NewChain().GetPercentChange24h(context.Background(), "BTC")
	assert.Error(t, err)
}

func TestCoinGecko_ParsesChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "ids=bitcoin")
		w.Write([]byte(`{"bitcoin": {"usd": 60000, "usd_24h_change": 4.25}}`))
	}))
	defer srv.Close()

	feed := NewCoinGecko(srv.URL, srv.Client())
	change, err := feed.GetPercentChange24h(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, 4.25, change)
}

func TestCoinGecko_UnknownSymbolUsesLowercase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "ids=obscurecoin")
		w.Write([]byte(`{"obscurecoin": {"usd": 1, "usd_24h_change": -0.5}}`))
	}))
	defer srv.Close()

	feed := NewCoinGecko(srv.URL, srv.Client())
	change, err := feed.GetPercentChange24h(context.Background(), "OBSCURECOIN")

	require.NoError(t, err)
	assert.Equal(t, -0.5, change)
}

func TestCoinGecko_MissingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	feed := NewCoinGecko(srv.URL, srv.Client())
	_, err := feed.GetPercentChange24h(context.Background(), "BTC")
	assert.Equal(t, types.FEED_LOOKUP_FAILED, types.CodeOf(err))
}

func TestCoinGecko_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"bitcoin": {"usd": 60000, "usd_24h_change": 1.0}}`))
	}))
	defer srv.Close()

	feed := NewCoinGecko(srv.URL, srv.Client())
	change, err := feed.GetPercentChange24h(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, 1.0, change)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestCoinGecko_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	feed := NewCoinGecko(srv.URL, srv.Client())
	_, err := feed.GetPercentChange24h(context.Background(), "BTC")

	assert.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestBinance_ParsesChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "symbol=ETHUSDT")
		w.Write([]byte(`{"symbol": "ETHUSDT", "priceChangePercent": "-3.180"}`))
	}))
	defer srv.Close()

	feed := NewBinance(srv.URL, srv.Client())
	change, err := feed.GetPercentChange24h(context.Background(), "ETH")

	require.NoError(t, err)
	assert.Equal(t, -3.18, change)
}

func TestBinance_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"priceChangePercent": "not-a-number"}`))
	}))
	defer srv.Close()

	feed := NewBinance(srv.URL, srv.Client())
	_, err := feed.GetPercentChange24h(context.Background(), "ETH")
	assert.Equal(t, types.FEED_LOOKUP_FAILED, types.CodeOf(err))
}
