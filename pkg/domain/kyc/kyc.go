// Package kyc models identity documents awaiting review.
package kyc

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AllowedContentTypes are the document formats accepted for review.
var AllowedContentTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"application/pdf": ".pdf",
}

// Verification is the single KYC record a user owns.
type Verification struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Document       string    `json:"document"`
	Status         Status    `json:"status"`
	RejectedReason string    `json:"rejected_reason,omitempty"`
	Ref            uuid.UUID `json:"ref"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Submit records a new document on v, creating v if nil. Resubmitting
// always puts the record back in review.
func Submit(v *Verification, userID uuid.UUID, document string) *Verification {
	if v == nil {
		v = &Verification{ID: uuid.New(), UserID: userID, Ref: uuid.New()}
	}
	v.Document = document
	v.Status = StatusPending
	v.RejectedReason = ""
	v.UploadedAt = time.Now().UTC()
	return v
}

func (v *Verification) Approve() error {
	if v.Status == StatusApproved {
		return fmt.Errorf("%w: kyc %s already approved", domain.ErrInvalidTransition, v.ID)
	}
	v.Status = StatusApproved
	v.RejectedReason = ""
	return nil
}

func (v *Verification) Reject(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", domain.ErrValidation)
	}
	if v.Status == StatusRejected {
		return fmt.Errorf("%w: kyc %s already rejected", domain.ErrInvalidTransition, v.ID)
	}
	v.Status = StatusRejected
	v.RejectedReason = reason
	return nil
}
