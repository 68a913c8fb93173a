package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, schedulerOn bool) *config.App {
	dir := t.TempDir()
	return &config.App{
		Env:         "test",
		Server:      &config.Server{Host: "127.0.0.1", Port: 0},
		Log:         &config.Log{Format: "text"},
		DB:          &config.DB{Url: "file:" + filepath.Join(dir, "axeria.db") + "?_foreign_keys=on", AutoMigrate: true},
		Auth:        &config.Auth{Jwt: &config.Jwt{Secret: "secret", Expiry: time.Hour}},
		Redis:       &config.Redis{},
		RateLimit:   &config.RateLimit{MaxRequests: 100, Window: time.Minute},
		EventBus:    &config.EventBus{Driver: "memory"},
		PriceTicker: &config.PriceTicker{BaseURL: "http://127.0.0.1:1", HTTPTimeout: time.Second, CacheTTL: time.Minute},
		Telegram:    &config.Telegram{},
		Storage:     &config.Storage{Dir: filepath.Join(dir, "uploads"), MaxFileBytes: 1 << 20},
		Scheduler:   &config.Scheduler{Enabled: schedulerOn, SettleSpec: "@every 1m", ProgressSpec: "@hourly"},
		Ledger:      &config.Ledger{WithdrawalDebit: "by_type"},
		Site:        &config.Site{Name: "Axeria", WithdrawalCharge: decimal.Zero, BotAmount: decimal.Zero},
	}
}

func TestNewServerServesRoutes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := newServer(ctx, testConfig(t, true))
	require.NoError(t, err)
	defer srv.close()
	require.NotNil(t, srv.scheduler)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/market", http.StatusOK},
		{http.MethodGet, "/me", http.StatusBadRequest},
		{http.MethodGet, "/admin/dashboard", http.StatusBadRequest},
		{http.MethodGet, "/no-such-route", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, err := srv.fiber.Test(httptest.NewRequest(tc.method, tc.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestNewServerWithoutScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := newServer(ctx, testConfig(t, false))
	require.NoError(t, err)
	defer srv.close()
	assert.Nil(t, srv.scheduler)
}
