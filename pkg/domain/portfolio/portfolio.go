// Package portfolio models investment plans and the positions opened in them.
package portfolio

import (
	"fmt"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusPending Status = "pending"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusClosed || s == StatusPending
}

type Portfolio struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	PlanID          uuid.UUID       `json:"plan_id"`
	AmountInvested  decimal.Decimal `json:"amount_invested"`
	AmountAvailable decimal.Decimal `json:"amount_available"`
	Profit          decimal.Decimal `json:"profit"`
	Status          Status          `json:"status"`
	BotActive       bool            `json:"bot_active"`
	BotName         string          `json:"bot_name,omitempty"`
	SetupDate       time.Time       `json:"setup_date"`
	UpdatedAt       time.Time       `json:"updated"`
}

// New opens an active position in plan.
func New(userID uuid.UUID, plan *Plan, amount decimal.Decimal) (*Portfolio, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := plan.Accepts(amount); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Portfolio{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         plan.ID,
		AmountInvested: amount,
		Status:         StatusActive,
		SetupDate:      now,
		UpdatedAt:      now,
	}, nil
}

// TopUp adds capital to an active position.
func (p *Portfolio) TopUp(amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if p.Status != StatusActive {
		return fmt.Errorf("portfolio %s is %s: %w", p.ID, p.Status, domain.ErrInactive)
	}
	p.AmountInvested = p.AmountInvested.Add(amount)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Withdraw takes amount out of the position's available balance.
func (p *Portfolio) Withdraw(amount decimal.Decimal) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if p.AmountAvailable.LessThan(amount) {
		return fmt.Errorf(
			"%w: portfolio has %s available",
			domain.ErrInsufficientFunds, p.AmountAvailable.StringFixed(2),
		)
	}
	p.AmountAvailable = p.AmountAvailable.Sub(amount)
	p.UpdatedAt = time.Now().UTC()
	return nil
}
