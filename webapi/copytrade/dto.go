package copytrade

import (
	copytradesvc "github.com/amirasaad/axeria/pkg/service/copytrade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

// TraderRequest creates or replaces an expert trader. Duration and Period
// together give the copy length, e.g. 2 "weeks".
type TraderRequest struct {
	Name                 string          `json:"name" validate:"required,max=100"`
	Image                string          `json:"image" validate:"max=255"`
	Duration             int             `json:"duration" validate:"gte=0"`
	Period               string          `json:"period" validate:"max=10"`
	TotalInvestors       int             `json:"total_investors" validate:"gte=0"`
	ActiveInvestors      int             `json:"active_investors" validate:"gte=0"`
	MinDeposit           decimal.Decimal `json:"min_deposit"`
	RiskLevel            decimal.Decimal `json:"risk_level"`
	WinRate              decimal.Decimal `json:"win_rate"`
	DailyROI             decimal.Decimal `json:"daily_roi"`
	TradingFeePercentage decimal.Decimal `json:"trading_fee_percentage"`
	Verified             bool            `json:"verified"`
}

func (r TraderRequest) toInput() copytradesvc.TraderInput {
	return copytradesvc.TraderInput(r)
}

type CopyRequest struct {
	TraderID uuid.UUID       `json:"trader_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ActiveRequest struct {
	Active bool `json:"active"`
}

// ProgressRequest sets trade progress, 0 to 100.
type ProgressRequest struct {
	Progress decimal.Decimal `json:"progress"`
}
