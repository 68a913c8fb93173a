package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/cache"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// BinanceTicker fetches spot prices from the Binance public REST API.
// Lookups are cached and concurrent requests for one symbol share a single
// upstream call. There is no retry.
type BinanceTicker struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.PriceCache
	ttl        time.Duration
	prefix     string
	inflight   singleflight.Group
	logger     *slog.Logger
}

// binanceTickerResponse is the body of GET /api/v3/ticker/price.
// Example: {"symbol":"BTCUSDT","price":"65000.12000000"}
type binanceTickerResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// NewBinanceTicker creates a ticker. A nil cache disables caching.
func NewBinanceTicker(cfg *config.PriceTicker, c cache.PriceCache, logger *slog.Logger) *BinanceTicker {
	return &BinanceTicker{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cache:      c,
		ttl:        cfg.CacheTTL,
		prefix:     cfg.CachePrefix,
		logger:     logger,
	}
}

// GetPrice returns the last traded price of symbol, e.g. BTCUSDT.
func (b *BinanceTicker) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("empty symbol")
	}
	key := b.prefix + symbol
	if b.cache != nil {
		if price, ok, err := b.cache.Get(ctx, key); err != nil {
			b.logger.Warn("Price cache read failed", "symbol", symbol, "error", err)
		} else if ok {
			return price, nil
		}
	}

	v, err, shared := b.inflight.Do(symbol, func() (any, error) {
		return b.fetch(ctx, symbol)
	})
	if err != nil {
		metrics.PriceFetchFailures.Inc()
		return decimal.Zero, err
	}
	price := v.(decimal.Decimal)
	if b.cache != nil && !shared {
		if err := b.cache.Set(ctx, key, price, b.ttl); err != nil {
			b.logger.Warn("Price cache write failed", "symbol", symbol, "error", err)
		}
	}
	return price, nil
}

func (b *BinanceTicker) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	b.logger.Debug("Fetching price", "symbol", symbol)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr binanceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return decimal.Zero, fmt.Errorf("binance returned status %d: %s", resp.StatusCode, apiErr.Msg)
		}
		return decimal.Zero, fmt.Errorf("binance returned status %d: %s", resp.StatusCode, string(body))
	}

	var out binanceTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("binance returned no price for %s", symbol)
	}
	return out.Price, nil
}
