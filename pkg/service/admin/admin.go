// Package admin provides the dashboard figures and the site settings.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/amirasaad/axeria/pkg/domain/portfolio"
	"github.com/amirasaad/axeria/pkg/domain/site"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/shopspring/decimal"
)

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	Traders            int64           `json:"traders"`
	DeactivatedTraders int64           `json:"deactivated_traders"`
	BlockedTraders     int64           `json:"blocked_traders"`
	PendingPayments    int64           `json:"pending_payments"`
	ActivePortfolios   int64           `json:"active_portfolios"`
}

type Service struct {
	uow      repository.UnitOfWork
	defaults site.Config
	logger   *slog.Logger
}

// New creates the service. defaults seeds the site settings the first
// time they are read; nil seeds zero values.
func New(
	uow repository.UnitOfWork,
	defaults *config.Site,
	logger *slog.Logger,
) *Service {
	s := &Service{uow: uow, logger: logger}
	if defaults != nil {
		s.defaults = site.Config{
			WithdrawalCharge: defaults.WithdrawalCharge,
			Email:            defaults.Email,
			SiteName:         defaults.Name,
			SiteMobile:       defaults.Mobile,
			BotAmount:        defaults.BotAmount,
		}
	}
	return s
}

// Dashboard computes the landing figures in one read transaction.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if d.TotalDeposits, err = uow.PaymentRepository().SumAmount(ctx, payment.StatusCompleted); err != nil {
			return err
		}
		users := uow.UserRepository()
		no, yes := false, true
		counts := []struct {
			dst *int64
			f   repository.UserFilter
		}{
			{&d.Traders, repository.UserFilter{Role: user.RoleTrader}},
			{&d.DeactivatedTraders, repository.UserFilter{Role: user.RoleTrader, Active: &no}},
			{&d.BlockedTraders, repository.UserFilter{Role: user.RoleTrader, Blocked: &yes}},
		}
		for _, c := range counts {
			if *c.dst, err = users.Count(ctx, c.f); err != nil {
				return err
			}
		}
		if d.PendingPayments, err = uow.PaymentRepository().Count(ctx, payment.StatusPending); err != nil {
			return err
		}
		d.ActivePortfolios, err = uow.PortfolioRepository().Count(ctx, portfolio.StatusActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SiteConfig returns the site settings, storing the defaults on first read.
func (s *Service) SiteConfig(ctx context.Context) (*site.Config, error) {
	repo := s.uow.SiteConfigRepository()
	cfg, err := repo.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	seed := s.defaults
	if err := repo.Save(ctx, &seed); err != nil {
		return nil, err
	}
	s.logger.Info("Site configuration seeded", "site", seed.SiteName)
	return &seed, nil
}

// UpdateSiteConfig replaces the site settings.
func (s *Service) UpdateSiteConfig(ctx context.Context, in site.Config) (*site.Config, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.SiteName = strings.TrimSpace(in.SiteName)
	in.SiteMobile = strings.TrimSpace(in.SiteMobile)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.uow.SiteConfigRepository().Save(ctx, &in); err != nil {
		return nil, err
	}
	s.logger.Info("Site configuration updated",
		"withdrawal_charge", in.WithdrawalCharge.StringFixed(2),
		"bot_amount", in.BotAmount.StringFixed(2),
	)
	return &in, nil
}
