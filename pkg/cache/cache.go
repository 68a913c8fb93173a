package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceCache stores the last known price per symbol for a bounded time.
// Get reports ok=false on a miss or an expired entry; a miss is never an
// error.
type PriceCache interface {
	Get(ctx context.Context, key string) (price decimal.Decimal, ok bool, err error)
	Set(ctx context.Context, key string, price decimal.Decimal, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
