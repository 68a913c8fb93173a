package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/user"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/amirasaad/axeria/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// dummyHash keeps the cost of a failed lookup equal to a failed password check.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

type Strategy interface {
	Login(ctx context.Context, identity, password string) (*user.User, error)
	GetCurrentUserID(ctx context.Context) (uuid.UUID, error)
	GenerateToken(ctx context.Context, u *user.User) (string, error)
}

type Service struct {
	uow      repository.UnitOfWork
	strategy Strategy
	logger   *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	strategy Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, strategy: strategy, logger: logger}
}

func NewWithBasic(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return New(uow, &BasicAuthStrategy{uow: uow, logger: logger}, logger)
}

func NewWithJWT(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return New(uow, &JWTStrategy{uow: uow, cfg: cfg, logger: logger}, logger)
}

func (s *Service) GetCurrentUserId(
	token *jwt.Token,
) (userID uuid.UUID, err error) {
	log := s.logger.With("context", "GetCurrentUserId")
	userID, err = s.strategy.GetCurrentUserID(
		context.WithValue(
			context.Background(),
			userContextKey,
			token,
		),
	)
	if err != nil {
		log.Error("GetCurrentUserId failed", "error", err)
	}
	return
}

// Login checks credentials and account state, then records the login
// time and remote address.
func (s *Service) Login(
	ctx context.Context,
	identity, password, ip string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Login", "identity", identity)
	log.Debug("Login called")
	u, err = s.strategy.Login(ctx, identity, password)
	if err != nil {
		log.Warn("Login failed", "error", err)
		return nil, err
	}
	if err = u.CanLogin(); err != nil {
		log.Warn("Login refused", "userID", u.ID, "error", err)
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.uow.UserRepository().RecordLogin(ctx, u.ID, now, ip); err != nil {
		log.Warn("Failed to record login", "userID", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
		u.LastLoginIP = ip
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

func (s *Service) GenerateToken(
	ctx context.Context,
	u *user.User,
) (string, error) {
	log := s.logger.With("userID", u.ID)
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	return token, nil
}

// lookup finds a user by email or username and verifies the password.
func lookup(
	ctx context.Context,
	uow repository.UnitOfWork,
	identity, password string,
) (*user.User, error) {
	repo := uow.UserRepository()
	identity = strings.TrimSpace(identity)
	var (
		u   *user.User
		err error
	)
	if utils.IsEmail(identity) {
		u, err = repo.GetByEmail(ctx, strings.ToLower(identity))
	} else {
		u, err = repo.GetByUsername(ctx, identity)
	}
	if err != nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.Password) {
		return nil, user.ErrInvalidCredentials
	}
	return u, nil
}

// JWTStrategy implements Strategy for JWT-based authentication
type JWTStrategy struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

func NewJWTStrategy(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *JWTStrategy {
	return &JWTStrategy{uow: uow, cfg: cfg, logger: logger}
}

func (s *JWTStrategy) GenerateToken(
	ctx context.Context,
	u *user.User,
) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = u.Username
	claims["email"] = u.Email
	claims["user_id"] = u.ID.String()
	claims["role"] = string(u.Role)
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *JWTStrategy) Login(
	ctx context.Context,
	identity, password string,
) (*user.User, error) {
	return lookup(ctx, s.uow, identity, password)
}

func (s *JWTStrategy) GetCurrentUserID(
	ctx context.Context,
) (uuid.UUID, error) {
	token, ok := ctx.Value(userContextKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	userIDRaw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(userIDRaw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user id claim", domain.ErrUnauthorized)
	}
	return userID, nil
}

// BasicAuthStrategy implements Strategy for the CLI: password check only,
// no tokens.
type BasicAuthStrategy struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	userID uuid.UUID
}

func NewBasicAuthStrategy(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *BasicAuthStrategy {
	return &BasicAuthStrategy{uow: uow, logger: logger}
}

func (s *BasicAuthStrategy) Login(
	ctx context.Context,
	identity, password string,
) (*user.User, error) {
	u, err := lookup(ctx, s.uow, identity, password)
	if err != nil {
		return nil, err
	}
	s.userID = u.ID
	return u, nil
}

func (s *BasicAuthStrategy) GetCurrentUserID(ctx context.Context) (uuid.UUID, error) {
	if s.userID == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return s.userID, nil
}

func (s *BasicAuthStrategy) GenerateToken(ctx context.Context, u *user.User) (string, error) {
	return "", nil
}
