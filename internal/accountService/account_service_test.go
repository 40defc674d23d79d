package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/config"
	model "auction-manager/internal/models"
	"auction-manager/internal/repository"
	"auction-manager/internal/security"
)

func newService(t *testing.T) (*AccountService, *repository.MockAuctionDB) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockAuctionDB(ctrl)
	issuer := security.NewTokenIssuer(config.AuthConfig{
		JWTSecret: "test-secret-0123456789",
		Issuer:    "auction-manager",
		TokenTTL:  time.Hour,
	})
	return NewAccountService(mockRepo, issuer), mockRepo
}

func validParams() RegisterParams {
	return RegisterParams{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		Password:  "wonderland",
	}
}

// Tests Register
func TestAccountService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		modify        func(p *RegisterParams)
		mockSetup     func(m *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:   "valid",
			modify: func(p *RegisterParams) {},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
					require.NotEqual(t, "wonderland", u.PasswordHash)
					require.True(t, u.IsActive)
					u.ID = 1
					return nil
				})
			},
		},
		{
			name:          "bad_username",
			modify:        func(p *RegisterParams) { p.Username = "al ice" },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "empty_first_name",
			modify:        func(p *RegisterParams) { p.FirstName = "  " },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "long_last_name",
			modify:        func(p *RegisterParams) { p.LastName = "Abcdefghijklmnopqrstu" },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "bad_email",
			modify:        func(p *RegisterParams) { p.Email = "not-an-email" },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "short_password",
			modify:        func(p *RegisterParams) { p.Password = "short" },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "password_over_bcrypt_limit",
			modify:        func(p *RegisterParams) { p.Password = strings.Repeat("p", 73) },
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:   "multibyte_password_at_limit",
			modify: func(p *RegisterParams) { p.Password = strings.Repeat("é", 36) },
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
					u.ID = 1
					return nil
				})
			},
		},
		{
			name:   "username_taken",
			modify: func(p *RegisterParams) {},
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(auctionerrors.ErrUsernameTaken)
			},
			expectedError: auctionerrors.ErrUsernameTaken,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service, mockRepo := newService(t)
			if tc.mockSetup != nil {
				tc.mockSetup(mockRepo)
			}
			p := validParams()
			tc.modify(&p)

			user, err := service.Register(context.Background(), p)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, uint(1), user.ID)
			require.Equal(t, "alice", user.Username)
		})
	}
}

// Tests Login
func TestAccountService_Login(t *testing.T) {
	t.Parallel()
	hash, err := security.HashPassword("wonderland")
	require.NoError(t, err)
	stored := model.User{ID: 3, Username: "alice", PasswordHash: hash, IsActive: true}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(stored, nil)
		mockRepo.EXPECT().UpdateUser(gomock.Any(), uint(3), gomock.Any()).Return(nil)

		session, err := service.Login(context.Background(), "alice", "wonderland")
		require.NoError(t, err)
		require.NotEmpty(t, session.Token)
		require.NotNil(t, session.User.LastLogin)
		require.True(t, session.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(stored, nil)

		_, err := service.Login(context.Background(), "alice", "looking-glass")
		require.ErrorIs(t, err, auctionerrors.ErrBadCredentials)
	})

	t.Run("unknown_user", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(model.User{}, auctionerrors.ErrUserNotFound)

		_, err := service.Login(context.Background(), "bob", "wonderland")
		require.ErrorIs(t, err, auctionerrors.ErrBadCredentials)
	})

	t.Run("inactive", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		inactive := stored
		inactive.IsActive = false
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(inactive, nil)

		_, err := service.Login(context.Background(), "alice", "wonderland")
		require.ErrorIs(t, err, auctionerrors.ErrInactiveAccount)
	})

	t.Run("repo_fails", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUserByUsername(gomock.Any(), "alice").Return(model.User{}, errors.New("db down"))

		_, err := service.Login(context.Background(), "alice", "wonderland")
		require.Error(t, err)
		require.NotErrorIs(t, err, auctionerrors.ErrBadCredentials)
	})
}

// Tests UpdateAccount
func TestAccountService_UpdateAccount(t *testing.T) {
	t.Parallel()
	service, mockRepo := newService(t)
	ctx := context.Background()

	_, err := service.UpdateAccount(ctx, 1, UpdateParams{})
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)

	_, err = service.UpdateAccount(ctx, 1, UpdateParams{Email: lo.ToPtr("bad")})
	require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)

	mockRepo.EXPECT().UpdateUser(ctx, uint(1), map[string]any{"first_name": "Al", "email": "al@example.com"}).Return(nil)
	mockRepo.EXPECT().GetUser(ctx, uint(1)).Return(model.User{ID: 1, FirstName: "Al", Email: "al@example.com"}, nil)

	user, err := service.UpdateAccount(ctx, 1, UpdateParams{FirstName: lo.ToPtr(" Al "), Email: lo.ToPtr("al@example.com")})
	require.NoError(t, err)
	require.Equal(t, "Al", user.FirstName)
}

// Tests ChangePassword
func TestAccountService_ChangePassword(t *testing.T) {
	t.Parallel()
	hash, err := security.HashPassword("wonderland")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUser(ctx, uint(2)).Return(model.User{ID: 2, PasswordHash: hash}, nil)
		mockRepo.EXPECT().UpdateUser(ctx, uint(2), gomock.Any()).DoAndReturn(func(_ context.Context, _ uint, fields map[string]any) error {
			require.True(t, security.CheckPassword(fields["password_hash"].(string), "looking-glass"))
			return nil
		})
		require.NoError(t, service.ChangePassword(ctx, 2, "wonderland", "looking-glass"))
	})

	t.Run("wrong_old_password", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUser(ctx, uint(2)).Return(model.User{ID: 2, PasswordHash: hash}, nil)
		require.ErrorIs(t, service.ChangePassword(ctx, 2, "nope-nope", "looking-glass"), auctionerrors.ErrBadCredentials)
	})

	t.Run("new_password_too_short", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUser(ctx, uint(2)).Return(model.User{ID: 2, PasswordHash: hash}, nil)
		require.ErrorIs(t, service.ChangePassword(ctx, 2, "wonderland", "short"), auctionerrors.ErrInvalidInput)
	})

	t.Run("new_password_too_long", func(t *testing.T) {
		t.Parallel()
		service, mockRepo := newService(t)
		mockRepo.EXPECT().GetUser(ctx, uint(2)).Return(model.User{ID: 2, PasswordHash: hash}, nil)
		require.ErrorIs(t, service.ChangePassword(ctx, 2, "wonderland", strings.Repeat("x", 100)), auctionerrors.ErrInvalidInput)
	})
}

// Tests GetBalance
func TestAccountService_GetBalance(t *testing.T) {
	t.Parallel()
	service, mockRepo := newService(t)
	ctx := context.Background()

	want := model.BalanceSummary{Balance: 500, WonItems: 2, PaidItems: 1, TotalWon: 1500, TotalPaid: 1000}
	mockRepo.EXPECT().GetBalanceSummary(ctx, uint(4)).Return(want, nil)
	got, err := service.GetBalance(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, want, got)

	mockRepo.EXPECT().GetBalanceSummary(ctx, uint(5)).Return(model.BalanceSummary{}, auctionerrors.ErrUserNotFound)
	_, err = service.GetBalance(ctx, 5)
	require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
}
