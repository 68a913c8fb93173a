package repository

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain/kyc"
	repo "github.com/amirasaad/axeria/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) repo.KYCRepository {
	return &kycRepository{db: db}
}

// Save upserts on user_id so a user never holds more than one record.
func (r *kycRepository) Save(ctx context.Context, v *kyc.Verification) error {
	m := mapKYCToModel(v)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "status", "rejected_reason", "uploaded_at"}),
		}).Create(m).Error
	})
}

func (r *kycRepository) Get(ctx context.Context, id uuid.UUID) (*kyc.Verification, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *kycRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*kyc.Verification, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *kycRepository) first(q *gorm.DB) (*kyc.Verification, error) {
	var m KycVerification
	if err := q.First(&m).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return mapKYCToDomain(&m), nil
}

func (r *kycRepository) List(ctx context.Context, status kyc.Status) ([]*kyc.Verification, error) {
	q := r.db.WithContext(ctx).Order("uploaded_at DESC")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var models []KycVerification
	if err := q.Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*kyc.Verification, 0, len(models))
	for i := range models {
		result = append(result, mapKYCToDomain(&models[i]))
	}
	return result, nil
}

func mapKYCToModel(v *kyc.Verification) *KycVerification {
	return &KycVerification{
		ID:             v.ID,
		UserID:         v.UserID,
		Document:       v.Document,
		Status:         string(v.Status),
		RejectedReason: v.RejectedReason,
		Ref:            v.Ref,
		UploadedAt:     v.UploadedAt,
	}
}

func mapKYCToDomain(m *KycVerification) *kyc.Verification {
	return &kyc.Verification{
		ID:             m.ID,
		UserID:         m.UserID,
		Document:       m.Document,
		Status:         kyc.Status(m.Status),
		RejectedReason: m.RejectedReason,
		Ref:            m.Ref,
		UploadedAt:     m.UploadedAt,
	}
}
