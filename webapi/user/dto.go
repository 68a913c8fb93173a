package user

import (
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	domainuser "github.com/amirasaad/axeria/pkg/domain/user"
)

// UpdateProfileInput is the trader-editable part of a profile.
type UpdateProfileInput struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	FullName  string `json:"full_name" validate:"max=200"`
	Mobile    string `json:"mobile" validate:"max=30"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
	ZipCode   string `json:"zip_code" validate:"max=20"`
	Language  string `json:"language" validate:"omitempty,max=10"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type ChangeUsernameInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

type ChangeEmailInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
}

// AdminEditInput is an administrator's edit of a user. Balances, when
// present, are posted as ledger adjustments.
type AdminEditInput struct {
	FirstName     string                   `json:"first_name" validate:"max=100"`
	LastName      string                   `json:"last_name" validate:"max=100"`
	Email         string                   `json:"email" validate:"omitempty,email,max=100"`
	Mobile        string                   `json:"mobile" validate:"max=30"`
	CustomMessage string                   `json:"custom_message" validate:"max=1000"`
	MessageFormat domainuser.MessageFormat `json:"message_format"`
	Balances      *ledger.Balances         `json:"balances"`
}

type FlagInput struct {
	Value bool `json:"value"`
}

// ReconcileResult reports drift between stored balances and the ledger.
type ReconcileResult struct {
	Clean bool           `json:"clean"`
	Drift []ledger.Drift `json:"drift"`
}
