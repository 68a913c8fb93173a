package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain/site"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const siteConfigID = 1

type siteConfigRepository struct {
	db *gorm.DB
}

func NewSiteConfigRepository(db *gorm.DB) repo.SiteConfigRepository {
	return &siteConfigRepository{db: db}
}

// Get returns the stored row, or domain.ErrNotFound before the first Save.
func (r *siteConfigRepository) Get(ctx context.Context) (*site.Config, error) {
	var m SiteConfig
	if err := r.db.WithContext(ctx).Where("id = ?", siteConfigID).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &site.Config{
		WithdrawalCharge: m.WithdrawalCharge,
		Email:            m.Email,
		SiteName:         m.SiteName,
		SiteMobile:       m.SiteMobile,
		BotAmount:        m.BotAmount,
	}, nil
}

func (r *siteConfigRepository) Save(ctx context.Context, c *site.Config) error {
	m := &SiteConfig{
		ID:               siteConfigID,
		WithdrawalCharge: c.WithdrawalCharge,
		Email:            c.Email,
		SiteName:         c.SiteName,
		SiteMobile:       c.SiteMobile,
		BotAmount:        c.BotAmount,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"withdrawal_charge", "email", "site_name", "site_mobile", "bot_amount", "updated_at",
			}),
		}).Create(m).Error
	})
}
