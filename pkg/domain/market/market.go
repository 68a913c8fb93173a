// Package market holds the browsable asset catalog.
package market

import (
	"fmt"
	"strings"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug"`
	Assets []Asset   `json:"assets,omitempty"`
}

type Asset struct {
	ID              uuid.UUID       `json:"id"`
	CategoryID      uuid.UUID       `json:"category_id"`
	Name            string          `json:"name"`
	Ticker          string          `json:"ticker"`
	Image           string          `json:"image,omitempty"`
	PercentChange1D decimal.Decimal `json:"percent_change_1d"`
	Slug            string          `json:"slug"`
}

func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	return &Category{ID: uuid.New(), Name: name, Slug: slug}, nil
}

func NewAsset(categoryID uuid.UUID, name, ticker, image string, change decimal.Decimal) (*Asset, error) {
	name = strings.TrimSpace(name)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	slug := utils.Slugify(name)
	if slug == "" || ticker == "" {
		return nil, fmt.Errorf("%w: asset name and ticker are required", domain.ErrValidation)
	}
	return &Asset{
		ID:              uuid.New(),
		CategoryID:      categoryID,
		Name:            name,
		Ticker:          ticker,
		Image:           image,
		PercentChange1D: change,
		Slug:            slug,
	}, nil
}
