// Package user provides business logic for user management operations.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"github.com/amirasaad/axeria/pkg/repository"
	ledgersvc "github.com/amirasaad/axeria/pkg/service/ledger"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/google/uuid"
)

// Service provides business logic for user operations including creation, updates, and deletion.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork, event bus and logger.
func New(
	uow repository.UnitOfWork,
	bus eventbus.Bus,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, bus: bus, logger: logger}
}

// Profile is the self-service editable part of a user.
type Profile struct {
	FirstName string
	LastName  string
	FullName  string
	Mobile    string
	Address   string
	City      string
	ZipCode   string
	Language  string
}

// AdminEdit is what an administrator may change on a trader. A nil
// Balances leaves the balances alone.
type AdminEdit struct {
	FirstName     string
	LastName      string
	Email         string
	Mobile        string
	CustomMessage string
	MessageFormat user.MessageFormat
	Balances      *ledger.Balances
}

// Register creates an active trader.
func (s *Service) Register(
	ctx context.Context,
	username, email, password string,
) (*user.User, error) {
	log := s.logger.With("context", "Register", "username", username)
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := ensureFree(ctx, uow, "username", u.Username, uuid.Nil); err != nil {
			return err
		}
		if err := ensureFree(ctx, uow, "email", u.Email, uuid.Nil); err != nil {
			return err
		}
		return uow.UserRepository().Create(ctx, u)
	})
	if err != nil {
		log.Warn("Registration failed", "error", err)
		return nil, err
	}
	log.Info("User registered", "userID", u.ID)
	eventbus.Publish(ctx, s.bus, s.logger, events.UserRegistered{
		Meta:  events.NewMeta(u.ID, u.Username),
		Email: u.Email,
	})
	return u, nil
}

// CreateAdmin seeds an administrator account.
func (s *Service) CreateAdmin(
	ctx context.Context,
	username, email, password string,
) (*user.User, error) {
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	u.Role = user.RoleAdmin
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.UserRepository().Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Administrator created", "userID", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.uow.UserRepository().Get(ctx, id)
}

// UpdateProfile changes the caller's own profile fields.
func (s *Service) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	p Profile,
) (*user.User, error) {
	return s.update(ctx, id, func(_ repository.UnitOfWork, u *user.User) error {
		u.FirstName = strings.TrimSpace(p.FirstName)
		u.LastName = strings.TrimSpace(p.LastName)
		u.FullName = strings.TrimSpace(p.FullName)
		u.Mobile = strings.TrimSpace(p.Mobile)
		u.Address = strings.TrimSpace(p.Address)
		u.City = strings.TrimSpace(p.City)
		u.ZipCode = strings.TrimSpace(p.ZipCode)
		if p.Language != "" {
			u.Language = p.Language
		}
		return nil
	})
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	current, next string,
) error {
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	_, err := s.update(ctx, id, func(_ repository.UnitOfWork, u *user.User) error {
		if !utils.CheckPasswordHash(current, u.Password) {
			return user.ErrInvalidCredentials
		}
		hash, err := utils.HashPassword(next)
		if err != nil {
			return err
		}
		u.Password = hash
		return nil
	})
	return err
}

func (s *Service) ChangeUsername(
	ctx context.Context,
	id uuid.UUID,
	username string,
) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrValidation)
	}
	return s.update(ctx, id, func(uow repository.UnitOfWork, u *user.User) error {
		if err := ensureFree(ctx, uow, "username", username, u.ID); err != nil {
			return err
		}
		u.Username = username
		return nil
	})
}

func (s *Service) ChangeEmail(
	ctx context.Context,
	id uuid.UUID,
	email string,
) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return s.update(ctx, id, func(uow repository.UnitOfWork, u *user.User) error {
		if err := ensureFree(ctx, uow, "email", email, u.ID); err != nil {
			return err
		}
		u.Email = email
		return nil
	})
}

// Deactivate deletes the caller's account and everything it owns.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.Delete(ctx, id)
}

// List returns users matching f, newest first.
func (s *Service) List(ctx context.Context, f repository.UserFilter) ([]*user.User, error) {
	return s.uow.UserRepository().List(ctx, f)
}

// Edit applies an administrator's changes. Balance changes are posted as
// ledger adjustments in the same transaction.
func (s *Service) Edit(
	ctx context.Context,
	id uuid.UUID,
	in AdminEdit,
) (*user.User, error) {
	log := s.logger.With("context", "Edit", "userID", id)
	u, err := s.update(ctx, id, func(uow repository.UnitOfWork, u *user.User) error {
		u.FirstName = strings.TrimSpace(in.FirstName)
		u.LastName = strings.TrimSpace(in.LastName)
		u.Mobile = strings.TrimSpace(in.Mobile)
		u.CustomMessage = strings.TrimSpace(in.CustomMessage)
		switch in.MessageFormat {
		case "", user.MessagePopup, user.MessageInline:
			u.MessageFormat = in.MessageFormat
		default:
			return fmt.Errorf("%w: unknown message format %q", domain.ErrValidation, in.MessageFormat)
		}
		if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != u.Email {
			if !utils.IsEmail(email) {
				return fmt.Errorf("%w: invalid email", domain.ErrValidation)
			}
			if err := ensureFree(ctx, uow, "email", email, u.ID); err != nil {
				return err
			}
			u.Email = email
		}
		if in.Balances != nil {
			src := ledger.Source{Type: "admin", ID: u.ID, Reason: "adjustment"}
			posted, _, err := ledgersvc.Post(ctx, uow, u.ID, src, ledger.SetOp(*in.Balances))
			if err != nil {
				return err
			}
			u.Balances = posted.Balances
			u.Version = posted.Version
		}
		return nil
	})
	if err != nil {
		log.Warn("Edit failed", "error", err)
		return nil, err
	}
	log.Info("User edited")
	return u, nil
}

func (s *Service) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*user.User, error) {
	return s.update(ctx, id, func(_ repository.UnitOfWork, u *user.User) error {
		u.Blocked = blocked
		return nil
	})
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*user.User, error) {
	return s.update(ctx, id, func(_ repository.UnitOfWork, u *user.User) error {
		u.Active = active
		return nil
	})
}

// Delete removes the user; owned rows go with it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return uow.UserRepository().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("User deleted", "userID", id)
	return nil
}

func (s *Service) update(
	ctx context.Context,
	id uuid.UUID,
	mutate func(uow repository.UnitOfWork, u *user.User) error,
) (*user.User, error) {
	var updated *user.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo := uow.UserRepository()
		u, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(uow, u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func ensureFree(
	ctx context.Context,
	uow repository.UnitOfWork,
	column, value string,
	exclude uuid.UUID,
) error {
	taken, err := uow.UserRepository().Taken(ctx, column, value, exclude)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%s %q: %w", column, value, domain.ErrAlreadyExists)
	}
	return nil
}
