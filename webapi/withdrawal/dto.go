package withdrawal

import (
	"github.com/amirasaad/axeria/pkg/domain/withdrawal"
	"github.com/shopspring/decimal"
)

// WithdrawalRequest asks for money to be paid out from the deposit or the
// profit pool.
type WithdrawalRequest struct {
	Type          withdrawal.Type `json:"type" validate:"required,oneof=deposit profit"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required,max=20"`
	WalletAddress string          `json:"wallet_address" validate:"required,min=6,max=255"`
}
