package livetrade

import (
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/livetrade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

// OpenRequest opens a trade for a user. Interval is a Go duration string
// such as "15m" or "4h"; Profit is the predetermined signed result.
type OpenRequest struct {
	TraderID *uuid.UUID         `json:"trader_id"`
	Ticker   string             `json:"ticker" validate:"required,max=20"`
	Striker  string             `json:"striker" validate:"max=50"`
	Interval string             `json:"interval" validate:"required"`
	Side     livetrade.Side     `json:"trade_type" validate:"required,oneof=buy sell"`
	Category livetrade.Category `json:"category" validate:"required,oneof=crypto stock"`
	Amount   decimal.Decimal    `json:"amount"`
	Profit   decimal.Decimal    `json:"profit"`
}

func (r OpenRequest) toInput() (livetrade.Input, error) {
	interval, err := time.ParseDuration(r.Interval)
	if err != nil || interval <= 0 {
		return livetrade.Input{}, domain.ErrValidation
	}
	return livetrade.Input{
		TraderID: r.TraderID,
		Ticker:   r.Ticker,
		Striker:  r.Striker,
		Interval: interval,
		Side:     r.Side,
		Category: r.Category,
		Amount:   r.Amount,
		Profit:   r.Profit,
	}, nil
}

type EditRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Profit decimal.Decimal `json:"profit"`
	Open   bool            `json:"open"`
}

// SettleRequest settles expired trades of one user, or of everyone when
// UserID is omitted.
type SettleRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}
