package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	"github.com/google/uuid"
)

// MethodInput is the admin-editable part of a payment method.
type MethodInput struct {
	Name          string
	WalletAddress string
	Details       map[string]string
	Active        bool
}

func (s *Service) CreateMethod(ctx context.Context, in MethodInput) (*payment.Method, error) {
	m, err := payment.NewMethod(in.Name, in.WalletAddress, in.Details)
	if err != nil {
		return nil, err
	}
	m.Active = in.Active
	if err := s.uow.PaymentMethodRepository().Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("Payment method created", "methodID", m.ID, "name", m.Name)
	return m, nil
}

func (s *Service) UpdateMethod(
	ctx context.Context,
	id uuid.UUID,
	in MethodInput,
) (*payment.Method, error) {
	name := strings.TrimSpace(in.Name)
	wallet := strings.TrimSpace(in.WalletAddress)
	if name == "" || wallet == "" {
		return nil, fmt.Errorf("%w: name and wallet address are required", domain.ErrValidation)
	}
	repo := s.uow.PaymentMethodRepository()
	m, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = name
	m.WalletAddress = wallet
	m.Active = in.Active
	if in.Details != nil {
		m.Details = in.Details
	}
	m.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMethod removes a method. Payments made through it keep their
// history with the method cleared.
func (s *Service) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	return s.uow.PaymentMethodRepository().Delete(ctx, id)
}

// Methods lists payment methods by name; activeOnly hides disabled ones.
func (s *Service) Methods(ctx context.Context, activeOnly bool) ([]*payment.Method, error) {
	return s.uow.PaymentMethodRepository().List(ctx, activeOnly)
}
