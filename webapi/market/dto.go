package market

import "github.com/shopspring/decimal"

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AssetRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Ticker          string          `json:"ticker" validate:"required,max=20"`
	Image           string          `json:"image" validate:"max=255"`
	PercentChange1D decimal.Decimal `json:"percent_change_1d"`
}
