package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

// FundRequest represents a deposit the trader is about to pay.
type FundRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	MethodID uuid.UUID       `json:"method_id" validate:"required"`
}

// MethodRequest creates or replaces a payment method.
type MethodRequest struct {
	Name          string            `json:"name" validate:"required,max=100"`
	WalletAddress string            `json:"wallet_address" validate:"required,max=255"`
	Details       map[string]string `json:"details"`
	Active        bool              `json:"active"`
}
