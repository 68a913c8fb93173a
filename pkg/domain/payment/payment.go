// Package payment models deposit requests that wait for manual confirmation.
package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Purpose says what an approved payment unlocks.
type Purpose string

const (
	PurposeDeposit Purpose = "deposit"
	PurposeBot     Purpose = "bot"
)

// Method is an admin-managed place users send funds to.
type Method struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	WalletAddress string            `json:"wallet_address"`
	Details       map[string]string `json:"details,omitempty"`
	Active        bool              `json:"active"`
	Ref           uuid.UUID         `json:"ref"`
	CreatedAt     time.Time         `json:"created"`
	UpdatedAt     time.Time         `json:"updated"`
}

// NewMethod validates and builds an active payment method.
func NewMethod(name, wallet string, details map[string]string) (*Method, error) {
	name = strings.TrimSpace(name)
	wallet = strings.TrimSpace(wallet)
	if name == "" || wallet == "" {
		return nil, fmt.Errorf("%w: name and wallet address are required", domain.ErrValidation)
	}
	now := time.Now().UTC()
	return &Method{
		ID:            uuid.New(),
		Name:          name,
		WalletAddress: wallet,
		Details:       details,
		Active:        true,
		Ref:           uuid.New(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Payment is a user's deposit claim. Only an admin moves it out of pending.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	MethodID      *uuid.UUID      `json:"method_id,omitempty"`
	Purpose       Purpose         `json:"purpose"`
	PortfolioID   *uuid.UUID      `json:"portfolio_id,omitempty"`
	Ref           uuid.UUID       `json:"ref"`
	Status        Status          `json:"status"`
	TransactionNo string          `json:"transaction_no"`
	CreatedAt     time.Time       `json:"created"`
	UpdatedAt     time.Time       `json:"updated"`
}

// New builds a pending payment. TransactionNo is assigned at persistence time.
func New(userID uuid.UUID, amount decimal.Decimal, methodID uuid.UUID, purpose Purpose, portfolioID *uuid.UUID) (*Payment, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	switch purpose {
	case PurposeDeposit:
		portfolioID = nil
	case PurposeBot:
		if portfolioID == nil {
			return nil, fmt.Errorf("%w: bot payments need a portfolio", domain.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown payment purpose %q", domain.ErrValidation, purpose)
	}
	now := time.Now().UTC()
	mid := methodID
	return &Payment{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		MethodID:    &mid,
		Purpose:     purpose,
		PortfolioID: portfolioID,
		Ref:         uuid.New(),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Approve moves pending to completed. Any other state is refused, so a
// replayed approval never credits twice.
func (p *Payment) Approve() error {
	return p.transition(StatusCompleted)
}

// Decline moves pending to failed.
func (p *Payment) Decline() error {
	return p.transition(StatusFailed)
}

func (p *Payment) transition(to Status) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: payment %s is %s", domain.ErrInvalidTransition, p.ID, p.Status)
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return nil
}

const transactionNoLayout = "20060102"

// TransactionNoPrefix is the day part of a transaction number.
func TransactionNoPrefix(day time.Time) string {
	return day.UTC().Format(transactionNoLayout)
}

// FormatTransactionNo renders YYYYMMDD followed by a 4-digit sequence.
func FormatTransactionNo(day time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", TransactionNoPrefix(day), seq)
}

// NextTransactionNo derives the next number for day from the highest number
// already issued that day (empty if none).
func NextTransactionNo(day time.Time, highest string) string {
	prefix := TransactionNoPrefix(day)
	seq := 0
	if strings.HasPrefix(highest, prefix) {
		if n, err := strconv.Atoi(highest[len(prefix):]); err == nil {
			seq = n
		}
	}
	return FormatTransactionNo(day, seq+1)
}
