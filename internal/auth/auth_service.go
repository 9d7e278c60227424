package auth

import (
	"context"
	"errors"
	"strings"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/token"
	"go-leave/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (TokenPair, AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenPair, AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

// UserStore is the slice of the user repository auth reads from.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Registrar creates accounts; user.Service satisfies it.
type Registrar interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
}

type service struct {
	users     UserStore
	registrar Registrar
	tokens    *token.Manager
	logger    *zap.Logger
}

func NewService(users UserStore, registrar Registrar, tokens *token.Manager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, registrar: registrar, tokens: tokens, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (TokenPair, AuthResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("find user by email failed", zap.Error(err))
			return TokenPair{}, AuthResponse{}, err
		}
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInactiveUser
	}

	pair, err := s.issue(u)
	if err != nil {
		l.Error("sign tokens failed", zap.Error(err))
		return TokenPair{}, AuthResponse{}, err
	}

	l.Info("user logged in", zap.String("user_id", u.ID.String()))
	return pair, mapUser(*u), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, AuthResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, token.KindRefresh)
	if err != nil {
		return TokenPair{}, AuthResponse{}, err
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, AuthResponse{}, autherrors.ErrInvalidToken
		}
		return TokenPair{}, AuthResponse{}, err
	}
	if !u.IsActive {
		return TokenPair{}, AuthResponse{}, autherrors.ErrInactiveUser
	}

	// Role is re-read so a demotion takes effect on the next refresh.
	pair, err := s.issue(u)
	if err != nil {
		return TokenPair{}, AuthResponse{}, err
	}
	return pair, mapUser(*u), nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	created, err := s.registrar.Create(ctx, user.CreateUserRequest{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Role:       user.RoleEmployee,
	})
	if err != nil {
		return AuthResponse{}, err
	}
	return mapUserResponse(created), nil
}

func (s *service) issue(u *user.User) (TokenPair, error) {
	access, refresh, err := s.tokens.Pair(u.ID.String(), u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
