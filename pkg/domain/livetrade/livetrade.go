// Package livetrade models admin-opened simulated trades and their
// settlement.
package livetrade

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type Category string

const (
	CategoryCrypto Category = "crypto"
	CategoryStock  Category = "stock"
)

type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLost Outcome = "lost"
	OutcomeDraw Outcome = "draw"
)

type LiveTrade struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	TraderID     *uuid.UUID       `json:"trader_id,omitempty"`
	Ticker       string           `json:"ticker"`
	Striker      string           `json:"striker,omitempty"`
	Interval     time.Duration    `json:"interval"`
	Side         Side             `json:"trade_type"`
	Category     Category         `json:"category"`
	Amount       decimal.Decimal  `json:"amount"`
	EntryPrice   *decimal.Decimal `json:"entry_price,omitempty"`
	ExitPrice    *decimal.Decimal `json:"exit_price,omitempty"`
	Profit       decimal.Decimal  `json:"profit"`
	Outcome      Outcome          `json:"outcome,omitempty"`
	Open         bool             `json:"open"`
	AdminCreated bool             `json:"admin_created"`
	OpenedAt     time.Time        `json:"opened_at"`
	ClosedAt     time.Time        `json:"closed_at"`
}

// Input carries the admin-supplied fields of a new trade.
type Input struct {
	TraderID *uuid.UUID
	Ticker   string
	Striker  string
	Interval time.Duration
	Side     Side
	Category Category
	Amount   decimal.Decimal
	// Profit is the predetermined result, signed.
	Profit decimal.Decimal
}

// New opens a trade that closes after in.Interval.
func New(userID uuid.UUID, in Input, now time.Time) (*LiveTrade, error) {
	if err := ledger.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker is required", domain.ErrValidation)
	}
	if in.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", domain.ErrValidation)
	}
	if in.Side != SideBuy && in.Side != SideSell {
		return nil, fmt.Errorf("%w: trade type must be buy or sell", domain.ErrValidation)
	}
	if in.Category != CategoryCrypto && in.Category != CategoryStock {
		return nil, fmt.Errorf("%w: category must be crypto or stock", domain.ErrValidation)
	}
	opened := now.UTC()
	return &LiveTrade{
		ID:           uuid.New(),
		UserID:       userID,
		TraderID:     in.TraderID,
		Ticker:       ticker,
		Striker:      in.Striker,
		Interval:     in.Interval,
		Side:         in.Side,
		Category:     in.Category,
		Amount:       in.Amount,
		Profit:       ledger.Round(in.Profit),
		Open:         true,
		AdminCreated: true,
		OpenedAt:     opened,
		ClosedAt:     opened.Add(in.Interval),
	}, nil
}

// Expired reports whether the trade should be settled at now.
func (t *LiveTrade) Expired(now time.Time) bool {
	return t.Open && !t.ClosedAt.After(now)
}

// Settle closes the trade and returns the balance change it implies: a
// credit to profit on a win, a floored debit on a loss, nothing on a draw.
func (t *LiveTrade) Settle() (Outcome, ledger.Op, error) {
	if !t.Open {
		return OutcomeNone, nil, fmt.Errorf("%w: live trade %s already closed", domain.ErrInvalidTransition, t.ID)
	}
	t.Open = false
	switch t.Profit.Sign() {
	case 1:
		t.Outcome = OutcomeWin
		return t.Outcome, ledger.CreditOp(ledger.Profit, t.Profit), nil
	case -1:
		t.Outcome = OutcomeLost
		return t.Outcome, ledger.DebitUpToOp(ledger.Profit, t.Profit.Abs()), nil
	default:
		t.Outcome = OutcomeDraw
		return t.Outcome, nil, nil
	}
}
