// Package transaction models the audit log of balance-affecting events.
package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeLiveTrade  Type = "live_trade"
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeTrade      Type = "trade"
	TypeBot        Type = "bot"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusWin       Status = "win"
	StatusLost      Status = "lost"
	StatusDraw      Status = "draw"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// Source kinds used in the polymorphic reference.
const (
	SourcePayment    = "payment"
	SourceWithdrawal = "withdrawal"
	SourcePortfolio  = "portfolio"
	SourceCopyTrade  = "copy_trade"
	SourceLiveTrade  = "live_trade"
	SourceAdmin      = "admin"
)

// Transaction is one row of a user's activity history. SourceType and
// SourceID point at whichever entity produced it.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Type       Type            `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
	Ref        uuid.UUID       `json:"ref"`
	SourceType string          `json:"source_type,omitempty"`
	SourceID   *uuid.UUID      `json:"source_id,omitempty"`
	Date       time.Time       `json:"date"`
	UpdatedAt  time.Time       `json:"updated"`
}

// New builds a transaction linked to its source entity.
func New(userID uuid.UUID, typ Type, amount decimal.Decimal, status Status, sourceType string, sourceID uuid.UUID) *Transaction {
	now := time.Now().UTC()
	id := sourceID
	return &Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       typ,
		Amount:     amount,
		Status:     status,
		Ref:        uuid.New(),
		SourceType: sourceType,
		SourceID:   &id,
		Date:       now,
		UpdatedAt:  now,
	}
}
