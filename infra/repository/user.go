package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository backed by db.
func NewUserRepository(db *gorm.DB) repo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(
	ctx context.Context,
	u *user.User,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapUserToModel(u)).Error
	})
}

func (r *userRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *userRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*user.User, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	return r.first(q)
}

func (r *userRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *userRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*user.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *userRepository) first(q *gorm.DB) (*user.User, error) {
	var m User
	if err := q.First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapUserToDomain(&m), nil
}

func (r *userRepository) Taken(
	ctx context.Context,
	column, value string,
	exclude uuid.UUID,
) (bool, error) {
	switch column {
	case "username", "email":
	default:
		return false, fmt.Errorf("%w: cannot check uniqueness of %q", domain.ErrValidation, column)
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where(column+" = ? AND id <> ?", value, exclude).
		Count(&n).Error
	return n > 0, MapGormErrorToDomain(err)
}

func (r *userRepository) Update(
	ctx context.Context,
	u *user.User,
) error {
	updates := map[string]any{
		"username":       u.Username,
		"email":          u.Email,
		"password":       u.Password,
		"role":           string(u.Role),
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"full_name":      u.FullName,
		"mobile":         u.Mobile,
		"address":        u.Address,
		"city":           u.City,
		"zip_code":       u.ZipCode,
		"language":       u.Language,
		"active":         u.Active,
		"blocked":        u.Blocked,
		"custom_message": u.CustomMessage,
		"message_format": string(u.MessageFormat),
		"updated_at":     time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.ID).Updates(updates)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateBalances(
	ctx context.Context,
	id uuid.UUID,
	b ledger.Balances,
	expectedVersion int64,
) error {
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"current_deposit": b.CurrentDeposit,
			"roi_investment":  b.ROIInvestment,
			"profit":          b.Profit,
			"copy_expenses":   b.CopyExpenses,
			"version":         expectedVersion + 1,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s at version %d: %w", id, expectedVersion, domain.ErrConcurrentUpdate)
	}
	return nil
}

func (r *userRepository) RecordLogin(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
	ip string,
) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Model(&User{}).
			Where("id = ?", id).
			Updates(map[string]any{"last_login_at": at, "last_login_ip": ip}).Error
	})
}

func (r *userRepository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) filter(ctx context.Context, f repo.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&User{})
	if f.Role != "" {
		q = q.Where("role = ?", string(f.Role))
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.Blocked != nil {
		q = q.Where("blocked = ?", *f.Blocked)
	}
	return q
}

func (r *userRepository) List(
	ctx context.Context,
	f repo.UserFilter,
) ([]*user.User, error) {
	var models []User
	if err := r.filter(ctx, f).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*user.User, 0, len(models))
	for i := range models {
		result = append(result, mapUserToDomain(&models[i]))
	}
	return result, nil
}

func (r *userRepository) Count(
	ctx context.Context,
	f repo.UserFilter,
) (int64, error) {
	var n int64
	err := r.filter(ctx, f).Count(&n).Error
	return n, MapGormErrorToDomain(err)
}

func mapUserToModel(u *user.User) *User {
	return &User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Password:       u.Password,
		Role:           string(u.Role),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName,
		Mobile:         u.Mobile,
		Address:        u.Address,
		City:           u.City,
		ZipCode:        u.ZipCode,
		Language:       u.Language,
		Active:         u.Active,
		Blocked:        u.Blocked,
		CustomMessage:  u.CustomMessage,
		MessageFormat:  string(u.MessageFormat),
		CurrentDeposit: u.Balances.CurrentDeposit,
		ROIInvestment:  u.Balances.ROIInvestment,
		Profit:         u.Balances.Profit,
		CopyExpenses:   u.Balances.CopyExpenses,
		Version:        u.Version,
		LastLoginAt:    u.LastLoginAt,
		LastLoginIP:    u.LastLoginIP,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func mapUserToDomain(m *User) *user.User {
	return &user.User{
		ID:            m.ID,
		Username:      m.Username,
		Email:         m.Email,
		Password:      m.Password,
		Role:          user.Role(m.Role),
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		FullName:      m.FullName,
		Mobile:        m.Mobile,
		Address:       m.Address,
		City:          m.City,
		ZipCode:       m.ZipCode,
		Language:      m.Language,
		Active:        m.Active,
		Blocked:       m.Blocked,
		CustomMessage: m.CustomMessage,
		MessageFormat: user.MessageFormat(m.MessageFormat),
		Balances: ledger.Balances{
			CurrentDeposit: m.CurrentDeposit,
			ROIInvestment:  m.ROIInvestment,
			Profit:         m.Profit,
			CopyExpenses:   m.CopyExpenses,
		},
		Version:     m.Version,
		LastLoginAt: m.LastLoginAt,
		LastLoginIP: m.LastLoginIP,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
