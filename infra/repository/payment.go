package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/payment"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) repo.PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, m *payment.Method) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapMethodToModel(m)).Error
	})
}

func (r *paymentMethodRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Method, error) {
	var m PaymentMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapMethodToDomain(&m), nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, m *payment.Method) error {
	res := r.db.WithContext(ctx).Model(&PaymentMethod{ID: m.ID}).
		Select("name", "wallet_address", "details", "active", "updated_at").
		Updates(mapMethodToModel(m))
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PaymentMethod{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]*payment.Method, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var models []PaymentMethod
	if err := q.Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*payment.Method, 0, len(models))
	for i := range models {
		result = append(result, mapMethodToDomain(&models[i]))
	}
	return result, nil
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository backed by db.
func NewPaymentRepository(db *gorm.DB) repo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(
	ctx context.Context,
	p *payment.Payment,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapPaymentToModel(p)).Error
	})
}

func (r *paymentRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *paymentRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *paymentRepository) GetByRef(
	ctx context.Context,
	ref uuid.UUID,
) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("ref = ?", ref))
}

func (r *paymentRepository) first(q *gorm.DB) (*payment.Payment, error) {
	var m Payment
	if err := q.First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapPaymentToDomain(&m), nil
}

func (r *paymentRepository) Update(
	ctx context.Context,
	p *payment.Payment,
) error {
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"amount":       p.Amount,
			"method_id":    p.MethodID,
			"portfolio_id": p.PortfolioID,
			"status":       string(p.Status),
			"updated_at":   p.UpdatedAt,
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*payment.Payment, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *paymentRepository) List(
	ctx context.Context,
	status payment.Status,
) ([]*payment.Payment, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.find(q)
}

func (r *paymentRepository) find(q *gorm.DB) ([]*payment.Payment, error) {
	var models []Payment
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*payment.Payment, 0, len(models))
	for i := range models {
		result = append(result, mapPaymentToDomain(&models[i]))
	}
	return result, nil
}

func (r *paymentRepository) HighestTransactionNo(
	ctx context.Context,
	prefix string,
) (string, error) {
	var nos []string
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("transaction_no LIKE ?", prefix+"%").
		Order("LENGTH(transaction_no) DESC, transaction_no DESC").
		Limit(1).
		Pluck("transaction_no", &nos).Error
	if err != nil {
		return "", MapGormErrorToDomain(err)
	}
	if len(nos) == 0 {
		return "", nil
	}
	return nos[0], nil
}

func (r *paymentRepository) Count(
	ctx context.Context,
	status payment.Status,
) (int64, error) {
	q := r.db.WithContext(ctx).Model(&Payment{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	err := q.Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func (r *paymentRepository) SumAmount(
	ctx context.Context,
	status payment.Status,
) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&Payment{}).Select("SUM(amount) AS total")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var row struct {
		Total decimal.NullDecimal
	}
	if err := q.Scan(&row).Error; err != nil {
		return decimal.Zero, MapGormErrorToDomain(err)
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal.Round(2), nil
}

func mapMethodToModel(m *payment.Method) *PaymentMethod {
	return &PaymentMethod{
		ID:            m.ID,
		Name:          m.Name,
		WalletAddress: m.WalletAddress,
		Details:       m.Details,
		Active:        m.Active,
		Ref:           m.Ref,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func mapMethodToDomain(m *PaymentMethod) *payment.Method {
	return &payment.Method{
		ID:            m.ID,
		Name:          m.Name,
		WalletAddress: m.WalletAddress,
		Details:       m.Details,
		Active:        m.Active,
		Ref:           m.Ref,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func mapPaymentToModel(p *payment.Payment) *Payment {
	return &Payment{
		ID:            p.ID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		MethodID:      p.MethodID,
		Purpose:       string(p.Purpose),
		PortfolioID:   p.PortfolioID,
		Ref:           p.Ref,
		Status:        string(p.Status),
		TransactionNo: p.TransactionNo,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mapPaymentToDomain(m *Payment) *payment.Payment {
	return &payment.Payment{
		ID:            m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		MethodID:      m.MethodID,
		Purpose:       payment.Purpose(m.Purpose),
		PortfolioID:   m.PortfolioID,
		Ref:           m.Ref,
		Status:        payment.Status(m.Status),
		TransactionNo: m.TransactionNo,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
