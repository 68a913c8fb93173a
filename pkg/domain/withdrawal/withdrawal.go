// Package withdrawal models payout requests and the policy deciding which
// ledger field an approved payout drains.
package withdrawal

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Type is the pool the user asked to withdraw from.
type Type string

const (
	TypeDeposit Type = "deposit"
	TypeProfit  Type = "profit"
)

// SourceField maps a withdrawal type onto its ledger field.
func (t Type) SourceField() (ledger.Field, error) {
	switch t {
	case TypeDeposit:
		return ledger.CurrentDeposit, nil
	case TypeProfit:
		return ledger.Profit, nil
	}
	return "", fmt.Errorf("%w: unknown withdrawal type %q", domain.ErrValidation, t)
}

// DebitPolicy selects the field debited on approval.
type DebitPolicy string

const (
	// DebitByType drains the field matching the withdrawal type.
	DebitByType DebitPolicy = "by_type"
	// DebitLegacyDeposit always drains current_deposit.
	DebitLegacyDeposit DebitPolicy = "legacy_deposit"
)

// Field returns the ledger field the policy debits for w.
func (p DebitPolicy) Field(w *Withdrawal) (ledger.Field, error) {
	if p == DebitLegacyDeposit {
		return ledger.CurrentDeposit, nil
	}
	return w.Type.SourceField()
}

type Withdrawal struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	Currency             string          `json:"currency"`
	WalletAddress        string          `json:"wallet_address"`
	Amount               decimal.Decimal `json:"amount"`
	Charges              decimal.Decimal `json:"charges"`
	AvailableForWithdraw decimal.Decimal `json:"available_for_withdraw"`
	Type                 Type            `json:"withdrawal_type"`
	Status               Status          `json:"status"`
	Ref                  uuid.UUID       `json:"ref"`
	CreatedAt            time.Time       `json:"created"`
	DecidedAt            *time.Time      `json:"decided_at,omitempty"`
}

// New validates a request and computes the net payout after charges.
func New(userID uuid.UUID, typ Type, amount, charges decimal.Decimal, currency, wallet string) (*Withdrawal, error) {
	if _, err := typ.SourceField(); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	currency = strings.TrimSpace(currency)
	wallet = strings.TrimSpace(wallet)
	if currency == "" || wallet == "" {
		return nil, fmt.Errorf("%w: currency and wallet address are required", domain.ErrValidation)
	}
	if charges.IsNegative() {
		return nil, fmt.Errorf("%w: negative charges", domain.ErrValidation)
	}
	net := amount.Sub(charges)
	if !net.IsPositive() {
		return nil, fmt.Errorf(
			"%w: amount %s does not cover the %s charge",
			domain.ErrInvalidAmount, amount.StringFixed(2), charges.StringFixed(2),
		)
	}
	return &Withdrawal{
		ID:                   uuid.New(),
		UserID:               userID,
		Currency:             currency,
		WalletAddress:        wallet,
		Amount:               amount,
		Charges:              charges,
		AvailableForWithdraw: net,
		Type:                 typ,
		Status:               StatusPending,
		Ref:                  uuid.New(),
		CreatedAt:            time.Now().UTC(),
	}, nil
}

func (w *Withdrawal) Approve(now time.Time) error {
	return w.decide(StatusApproved, now)
}

func (w *Withdrawal) Reject(now time.Time) error {
	return w.decide(StatusRejected, now)
}

func (w *Withdrawal) decide(to Status, now time.Time) error {
	if w.Status != StatusPending {
		return fmt.Errorf("%w: withdrawal %s is %s", domain.ErrInvalidTransition, w.ID, w.Status)
	}
	w.Status = to
	at := now.UTC()
	w.DecidedAt = &at
	return nil
}
