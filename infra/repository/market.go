package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain/market"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type marketRepository struct {
	db *gorm.DB
}

func NewMarketRepository(db *gorm.DB) repo.MarketRepository {
	return &marketRepository{db: db}
}

func (r *marketRepository) CreateCategory(ctx context.Context, c *market.Category) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Omit("Assets").Create(&MarketCategory{
			ID:   c.ID,
			Name: c.Name,
			Slug: c.Slug,
		}).Error
	})
}

func (r *marketRepository) GetCategory(ctx context.Context, id uuid.UUID) (*market.Category, error) {
	var m MarketCategory
	err := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapCategoryToDomain(&m), nil
}

func (r *marketRepository) CreateAsset(ctx context.Context, a *market.Asset) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&MarketAsset{
			ID:              a.ID,
			CategoryID:      a.CategoryID,
			Name:            a.Name,
			Ticker:          a.Ticker,
			Image:           a.Image,
			PercentChange1D: a.PercentChange1D,
			Slug:            a.Slug,
		}).Error
	})
}

func (r *marketRepository) ListCategories(ctx context.Context) ([]*market.Category, error) {
	var models []MarketCategory
	err := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*market.Category, 0, len(models))
	for i := range models {
		result = append(result, mapCategoryToDomain(&models[i]))
	}
	return result, nil
}

func mapCategoryToDomain(m *MarketCategory) *market.Category {
	c := &market.Category{ID: m.ID, Name: m.Name, Slug: m.Slug}
	for _, a := range m.Assets {
		c.Assets = append(c.Assets, market.Asset{
			ID:              a.ID,
			CategoryID:      a.CategoryID,
			Name:            a.Name,
			Ticker:          a.Ticker,
			Image:           a.Image,
			PercentChange1D: a.PercentChange1D,
			Slug:            a.Slug,
		})
	}
	return c
}
