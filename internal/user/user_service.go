package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-leave/internal/shared/contextutil"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	OptionsCacheKey = "users:options"
	optionsCacheTTL = 30 * time.Minute
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Me(ctx context.Context, userID string) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetOptions(ctx context.Context) ([]UserOption, error)
	UploadAvatar(ctx context.Context, userID, contentType string, data []byte) (UserResponse, error)
}

type Options struct {
	DefaultBalance LeaveBalance
	AvatarDir      string
	MaxAvatarBytes int64
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	opts   Options
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	if opts.AvatarDir == "" {
		opts.AvatarDir = filepath.Join("uploads", "avatars")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, opts: opts, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = RoleEmployee
	}
	if role != RoleAdmin && role != RoleEmployee {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Password:   string(hashed),
		Role:       role,
		Department: strings.TrimSpace(req.Department),
		IsActive:   true,
		Balance:    s.opts.DefaultBalance,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		l.Error("create user failed", zap.Error(err))
		return UserResponse{}, err
	}

	s.invalidateOptions(ctx)
	l.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return MapToResponse(*u), nil
}

func (s *service) Me(ctx context.Context, userID string) (UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return MapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = MapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetOptions(ctx context.Context) ([]UserOption, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result()
		if err == nil {
			var resp []UserOption
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (any, error) {
		users, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]UserOption, len(users))
		for i, u := range users {
			resp[i] = UserOption{ID: u.ID.String(), Name: u.Name, Department: u.Department}
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, OptionsCacheKey, payload, optionsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache user options failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]UserOption), nil
}

func (s *service) UploadAvatar(ctx context.Context, userID, contentType string, data []byte) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if len(data) == 0 {
		return UserResponse{}, usererrors.ErrAvatarRequired
	}
	if s.opts.MaxAvatarBytes > 0 && int64(len(data)) > s.opts.MaxAvatarBytes {
		return UserResponse{}, usererrors.ErrAvatarTooLarge
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return UserResponse{}, usererrors.ErrUnsupportedAvatarType
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}

	if err := os.MkdirAll(s.opts.AvatarDir, 0o755); err != nil {
		l.Error("create avatar dir failed", zap.Error(err))
		return UserResponse{}, err
	}

	filename := fmt.Sprintf("%s-%d%s", u.ID.String(), time.Now().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(s.opts.AvatarDir, filename), data, 0o644); err != nil {
		l.Error("write avatar failed", zap.Error(err))
		return UserResponse{}, err
	}

	if err := s.repo.UpdateAvatar(ctx, u.ID.String(), filename); err != nil {
		l.Error("update avatar path failed", zap.Error(err))
		return UserResponse{}, err
	}

	if u.AvatarPath != nil && *u.AvatarPath != "" {
		if err := os.Remove(filepath.Join(s.opts.AvatarDir, *u.AvatarPath)); err != nil && !os.IsNotExist(err) {
			l.Warn("remove old avatar failed", zap.String("path", *u.AvatarPath), zap.Error(err))
		}
	}

	u.AvatarPath = &filename
	return MapToResponse(*u), nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Warn("invalidate user options cache failed", zap.Error(err))
	}
}

func MapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		Balance: BalanceResponse{
			Annual:      u.Balance.Annual.InexactFloat64(),
			Medical:     u.Balance.Medical.InexactFloat64(),
			ShortLeave:  u.Balance.ShortLeave.InexactFloat64(),
			LeavesTaken: u.Balance.LeavesTaken.InexactFloat64(),
		},
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.AvatarPath != nil && *u.AvatarPath != "" {
		resp.AvatarURL = "/uploads/avatars/" + *u.AvatarPath
	}
	return resp
}
