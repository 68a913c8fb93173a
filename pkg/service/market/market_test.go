package market_test

import (
	"context"
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/service/market"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	svc := market.New(testutils.NewTestUoW(t), testutils.DiscardLogger())

	stocks, err := svc.CreateCategory(ctx, "Stocks")
	require.NoError(t, err)
	crypto, err := svc.CreateCategory(ctx, "Crypto Currencies")
	require.NoError(t, err)
	assert.Equal(t, "crypto-currencies", crypto.Slug)

	_, err = svc.CreateCategory(ctx, "Stocks")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = svc.CreateCategory(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	for _, in := range []market.AssetInput{
		{Name: "Tesla", Ticker: "tsla", PercentChange1D: decimal.RequireFromString("-1.25")},
		{Name: "Apple", Ticker: "AAPL", PercentChange1D: decimal.RequireFromString("0.40")},
	} {
		_, err := svc.CreateAsset(ctx, stocks.ID, in)
		require.NoError(t, err)
	}
	_, err = svc.CreateAsset(ctx, crypto.ID, market.AssetInput{Name: "Bitcoin", Ticker: "BTC"})
	require.NoError(t, err)

	_, err = svc.CreateAsset(ctx, uuid.New(), market.AssetInput{Name: "Ghost", Ticker: "GST"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.CreateAsset(ctx, stocks.ID, market.AssetInput{Name: "No ticker"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Crypto Currencies", categories[0].Name)
	require.Len(t, categories[1].Assets, 2)
	assert.Equal(t, "Apple", categories[1].Assets[0].Name)
	assert.Equal(t, "TSLA", categories[1].Assets[1].Ticker)
}
