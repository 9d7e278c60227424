package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/auth"
	autherrors "go-leave/internal/auth/errors"
	authMock "go-leave/internal/auth/mock"
	"go-leave/internal/shared/token"
	"go-leave/internal/user"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "auth-test-secret"

func newTestUser(t *testing.T, password string, active bool) *user.User {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &user.User{
		ID:         uuid.New(),
		Name:       "Mira",
		Email:      "mira@example.com",
		Password:   string(pw),
		Role:       user.RoleEmployee,
		Department: "Engineering",
		IsActive:   active,
	}
}

func TestService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := authMock.NewMockUserStore(ctrl)
	mockRegistrar := authMock.NewMockRegistrar(ctrl)
	tokens := token.NewManager(testSecret, 15*time.Minute, time.Hour)
	service := auth.NewService(mockUsers, mockRegistrar, tokens)
	ctx := context.Background()

	t.Run("Success Login", func(t *testing.T) {
		u := newTestUser(t, "password123", true)
		mockUsers.EXPECT().FindByEmail(gomock.Any(), "mira@example.com").Return(u, nil)

		pair, resp, err := service.Login(ctx, "  Mira@Example.com ", "password123")

		assert.NoError(t, err)
		assert.Equal(t, u.ID.String(), resp.ID)
		assert.Equal(t, user.RoleEmployee, resp.Role)

		claims, err := tokens.Parse(pair.AccessToken, token.KindAccess)
		assert.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.UserID)

		_, err = tokens.Parse(pair.RefreshToken, token.KindRefresh)
		assert.NoError(t, err)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		u := newTestUser(t, "password123", true)
		mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(u, nil)

		_, _, err := service.Login(ctx, u.Email, "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Inactive User", func(t *testing.T) {
		u := newTestUser(t, "password123", false)
		mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(u, nil)

		_, _, err := service.Login(ctx, u.Email, "password123")
		assert.ErrorIs(t, err, autherrors.ErrInactiveUser)
	})

	t.Run("Store Failure Is Not Masked", func(t *testing.T) {
		boom := errors.New("connection reset")
		mockUsers.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, boom)

		_, _, err := service.Login(ctx, "mira@example.com", "password123")
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := authMock.NewMockUserStore(ctrl)
	tokens := token.NewManager(testSecret, 15*time.Minute, time.Hour)
	service := auth.NewService(mockUsers, authMock.NewMockRegistrar(ctrl), tokens)
	ctx := context.Background()

	t.Run("Success Refresh Picks Up Current Role", func(t *testing.T) {
		u := newTestUser(t, "password123", true)
		_, refresh, err := tokens.Pair(u.ID.String(), user.RoleEmployee)
		assert.NoError(t, err)

		promoted := *u
		promoted.Role = user.RoleAdmin
		mockUsers.EXPECT().FindByID(gomock.Any(), u.ID.String()).Return(&promoted, nil)

		pair, resp, err := service.RefreshToken(ctx, refresh)
		assert.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, resp.Role)

		claims, err := tokens.Parse(pair.AccessToken, token.KindAccess)
		assert.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, claims.Role)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		access, _, err := tokens.Pair(uuid.NewString(), user.RoleEmployee)
		assert.NoError(t, err)

		_, _, err = service.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("Deleted User", func(t *testing.T) {
		id := uuid.NewString()
		_, refresh, _ := tokens.Pair(id, user.RoleEmployee)
		mockUsers.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, _, err := service.RefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("Inactive User", func(t *testing.T) {
		u := newTestUser(t, "password123", false)
		_, refresh, _ := tokens.Pair(u.ID.String(), u.Role)
		mockUsers.EXPECT().FindByID(gomock.Any(), u.ID.String()).Return(u, nil)

		_, _, err := service.RefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, autherrors.ErrInactiveUser)
	})
}

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistrar := authMock.NewMockRegistrar(ctrl)
	service := auth.NewService(authMock.NewMockUserStore(ctrl), mockRegistrar, token.NewManager(testSecret, 0, 0))
	ctx := context.Background()

	req := auth.RegisterRequest{Name: "Mira", Email: "mira@example.com", Password: "secret1", Department: "Engineering"}

	t.Run("Role Is Always Employee", func(t *testing.T) {
		mockRegistrar.EXPECT().
			Create(gomock.Any(), user.CreateUserRequest{
				Name:       req.Name,
				Email:      req.Email,
				Password:   req.Password,
				Department: req.Department,
				Role:       user.RoleEmployee,
			}).
			Return(user.UserResponse{ID: "u-1", Email: req.Email, Name: req.Name, Role: user.RoleEmployee, Department: req.Department}, nil)

		resp, err := service.Register(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, "u-1", resp.ID)
		assert.Equal(t, user.RoleEmployee, resp.Role)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		mockRegistrar.EXPECT().Create(gomock.Any(), gomock.Any()).Return(user.UserResponse{}, usererrors.ErrUserAlreadyExists)

		_, err := service.Register(ctx, req)
		assert.ErrorIs(t, err, usererrors.ErrUserAlreadyExists)
	})
}
