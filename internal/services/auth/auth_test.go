package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/wahs-congress/internal/lib/jwt"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/password"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	services "github.com/magabrotheeeer/wahs-congress/internal/services/auth"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type AdminSeederMock struct {
	mock.Mock
}

func (m *AdminSeederMock) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	return m.Called(ctx, email, passwordHash).Error(0)
}

type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userUID, email, role string) (string, error) {
	args := m.Called(userUID, email, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	user := &models.User{UUID: "u-1", Email: "a@x.com", PasswordHash: hash, Role: models.RoleUser}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:     "success, email normalized",
			email:    "  A@X.com ",
			password: "secret123",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
				j.On("GenerateToken", "u-1", "a@x.com", models.RoleUser).Return("token", nil).Once()
			},
			wantToken: "token",
		},
		{
			name:     "unknown email",
			email:    "b@x.com",
			password: "secret123",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "b@x.com").Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "storage failure",
			email:    "a@x.com",
			password: "secret123",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("db down")).Once()
			},
			wantAnyErr: true,
		},
		{
			name:     "token generation failure",
			email:    "a@x.com",
			password: "secret123",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
				j.On("GenerateToken", "u-1", "a@x.com", models.RoleUser).Return("", errors.New("sign")).Once()
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			maker := new(JwtMakerMock)
			tt.setupMocks(repo, maker)
			svc := services.NewAuthService(repo, maker)

			token, got, err := svc.Login(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, user, got)
			}
			repo.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	maker := customjwt.NewJWTMaker("secret", time.Hour)
	svc := services.NewAuthService(new(UserRepoMock), maker)

	token, err := maker.GenerateToken("u-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserUID)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, models.RoleAdmin, id.Role)

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestSeedAdmins(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("seeds normalized emails with hashed password", func(t *testing.T) {
		seeder := new(AdminSeederMock)
		hashed := mock.MatchedBy(func(h string) bool { return password.CompareHash(h, "s3cret!") == nil })
		seeder.On("EnsureAdmin", mock.Anything, "chair@iwahs.org", hashed).Return(nil).Once()
		seeder.On("EnsureAdmin", mock.Anything, "secretary@iwahs.org", hashed).Return(nil).Once()

		err := services.SeedAdmins(ctx, logger, seeder, []string{" Chair@IWAHS.org", "", "secretary@iwahs.org"}, "s3cret!")
		require.NoError(t, err)
		seeder.AssertExpectations(t)
	})

	t.Run("no password, nothing seeded", func(t *testing.T) {
		seeder := new(AdminSeederMock)
		require.NoError(t, services.SeedAdmins(ctx, logger, seeder, []string{"chair@iwahs.org"}, ""))
		seeder.AssertNotCalled(t, "EnsureAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		seeder := new(AdminSeederMock)
		seeder.On("EnsureAdmin", mock.Anything, "chair@iwahs.org", mock.Anything).Return(errors.New("db down")).Once()

		err := services.SeedAdmins(ctx, logger, seeder, []string{"chair@iwahs.org"}, "s3cret!")
		assert.Error(t, err)
	})
}
