// Package market serves the read-mostly asset catalog.
package market

import (
	"context"
	"log/slog"

	"github.com/amirasaad/axeria/pkg/domain/market"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// CreateCategory adds a category. Slugs are unique, so a second category
// with the same name fails with domain.ErrAlreadyExists.
func (s *Service) CreateCategory(ctx context.Context, name string) (*market.Category, error) {
	c, err := market.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.uow.MarketRepository().CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Market category created", "categoryID", c.ID, "slug", c.Slug)
	return c, nil
}

type AssetInput struct {
	Name            string
	Ticker          string
	Image           string
	PercentChange1D decimal.Decimal
}

func (s *Service) CreateAsset(ctx context.Context, categoryID uuid.UUID, in AssetInput) (*market.Asset, error) {
	a, err := market.NewAsset(categoryID, in.Name, in.Ticker, in.Image, in.PercentChange1D)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.MarketRepository().GetCategory(ctx, categoryID); err != nil {
			return err
		}
		return uow.MarketRepository().CreateAsset(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Market asset created", "assetID", a.ID, "ticker", a.Ticker)
	return a, nil
}

// ListCategories returns the catalog with assets nested under their
// category.
func (s *Service) ListCategories(ctx context.Context) ([]*market.Category, error) {
	return s.uow.MarketRepository().ListCategories(ctx)
}
