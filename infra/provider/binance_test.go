package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/axeria/infra/cache"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicker(t *testing.T, handler http.HandlerFunc) (*BinanceTicker, *cache.MemoryCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := cache.NewMemoryCache(context.Background(), 0)
	cfg := &config.PriceTicker{
		BaseURL:     srv.URL + "/",
		HTTPTimeout: time.Second,
		CacheTTL:    time.Minute,
		CachePrefix: "ticker:",
	}
	return NewBinanceTicker(cfg, c, testutils.DiscardLogger()), c
}

func TestGetPriceCaches(t *testing.T) {
	var calls atomic.Int32
	ticker, c := newTicker(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"65000.12000000"}`))
	})
	ctx := context.Background()

	price, err := ticker.GetPrice(ctx, "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "65000.12", price.String())

	price, err = ticker.GetPrice(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "65000.12", price.String())
	assert.Equal(t, int32(1), calls.Load())

	_, ok, err := c.Get(ctx, "ticker:BTCUSDT")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetPriceCollapsesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	ticker, _ := newTicker(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"3000.5"}`))
	})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, err := ticker.GetPrice(context.Background(), "ETHUSDT")
			assert.NoError(t, err)
			assert.Equal(t, "3000.5", price.String())
		}()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestGetPriceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"binance error", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, "Invalid symbol."},
		{"server error", http.StatusBadGateway, `bad gateway`, "status 502"},
		{"malformed", http.StatusOK, `{"price":`, "decode"},
		{"zero price", http.StatusOK, `{"symbol":"XUSDT","price":"0"}`, "no price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker, c := newTicker(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := ticker.GetPrice(context.Background(), "XUSDT")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 0, c.Len())
		})
	}

	ticker, _ := newTicker(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := ticker.GetPrice(context.Background(), " ")
	assert.Error(t, err)
}

func TestGetPriceTimeout(t *testing.T) {
	ticker, _ := newTicker(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ticker.httpClient.Timeout = 50 * time.Millisecond
	_, err := ticker.GetPrice(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}
