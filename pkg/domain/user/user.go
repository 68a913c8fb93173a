package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = fmt.Errorf("user %w", domain.ErrNotFound)
	// ErrInvalidCredentials hides which half of a login was wrong.
	ErrInvalidCredentials = fmt.Errorf("invalid identity or password: %w", domain.ErrUnauthorized)
	ErrUserBlocked        = fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	ErrUserInactive       = fmt.Errorf("user is deactivated: %w", domain.ErrForbidden)
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTrader Role = "trader"
)

// MessageFormat controls how an admin's custom message is shown to the user.
type MessageFormat string

const (
	MessagePopup  MessageFormat = "popup"
	MessageInline MessageFormat = "message"
)

// User represents a user in the system.
type User struct {
	ID            uuid.UUID     `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	Password      string        `json:"-"`
	Role          Role          `json:"role"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	FullName      string        `json:"full_name"`
	Mobile        string        `json:"mobile"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	ZipCode       string        `json:"zip_code"`
	Language      string        `json:"language"`
	Active        bool          `json:"active"`
	Blocked       bool          `json:"blocked"`
	CustomMessage string        `json:"custom_message,omitempty"`
	MessageFormat MessageFormat `json:"message_format,omitempty"`

	Balances ledger.Balances `json:"balances"`
	// Version is bumped on every balance write.
	Version int64 `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `json:"-"`
	CreatedAt   time.Time  `json:"created"`
	UpdatedAt   time.Time  `json:"updated"`
}

// NewUser creates an active trader with a hashed password.
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrValidation)
	}
	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      RoleTrader,
		Language:  "en",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin refuses blocked and deactivated accounts.
func (u *User) CanLogin() error {
	if u.Blocked {
		return ErrUserBlocked
	}
	if !u.Active {
		return ErrUserInactive
	}
	return nil
}

// DisplayName prefers the full name, then first/last, then the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	return u.Username
}
