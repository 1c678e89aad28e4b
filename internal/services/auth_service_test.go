// internal/services/auth_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

func newAuthService(t *testing.T, db *gorm.DB, verifier GoogleVerifier) *AuthService {
	t.Helper()

	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return NewAuthService(db, cfg.JWT, verifier)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Ananya Rao",
		Email:    "ananya@example.com",
		Password: "Sundar123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.UserRoleCustomer, resp.User.Role)

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(&RegisterRequest{
			Name:     "Ananya Again",
			Email:    "ananya@example.com",
			Password: "Sundar123",
		})
		assert.Error(t, err)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		_, err := svc.Register(&RegisterRequest{
			Name:     "Weak",
			Email:    "weak@example.com",
			Password: "short",
		})
		assert.Error(t, err)
	})

	t.Run("login with correct credentials", func(t *testing.T) {
		resp, err := svc.Login(&LoginRequest{Email: "ananya@example.com", Password: "Sundar123"})
		require.NoError(t, err)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Email: "ananya@example.com", Password: "Galat123"})
		assert.Error(t, err)
	})

	t.Run("blocked account cannot sign in", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).
			Where("email = ?", "ananya@example.com").
			Update("status", models.UserStatusBlocked).Error)

		_, err := svc.Login(&LoginRequest{Email: "ananya@example.com", Password: "Sundar123"})
		assert.Error(t, err)
	})
}

func TestGoogleLogin(t *testing.T) {
	db := newTestDB(t)

	t.Run("first google sign-in creates the account", func(t *testing.T) {
		svc := newAuthService(t, db, &fakeVerifier{claims: &GoogleClaims{
			Subject:       "google-sub-1",
			Email:         "kavya@example.com",
			EmailVerified: true,
			Name:          "Kavya Nair",
		}})

		resp, err := svc.GoogleLogin(context.Background(), &GoogleTokenRequest{IDToken: "tok"})
		require.NoError(t, err)
		require.NotNil(t, resp.User.GoogleID)
		assert.Equal(t, "google-sub-1", *resp.User.GoogleID)
		assert.Equal(t, "kavya@example.com", resp.User.Email)
	})

	t.Run("existing password account is linked by email", func(t *testing.T) {
		password := newAuthService(t, db, nil)
		registered, err := password.Register(&RegisterRequest{
			Name:     "Meera Iyer",
			Email:    "meera@example.com",
			Password: "Nupur1234",
		})
		require.NoError(t, err)

		svc := newAuthService(t, db, &fakeVerifier{claims: &GoogleClaims{
			Subject:       "google-sub-2",
			Email:         "meera@example.com",
			EmailVerified: true,
			Name:          "Meera Iyer",
		}})

		resp, err := svc.GoogleLogin(context.Background(), &GoogleTokenRequest{IDToken: "tok"})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)

		var linked models.User
		require.NoError(t, db.First(&linked, registered.User.ID).Error)
		require.NotNil(t, linked.GoogleID)
		assert.Equal(t, "google-sub-2", *linked.GoogleID)
	})

	t.Run("verifier rejection propagates", func(t *testing.T) {
		svc := newAuthService(t, db, &fakeVerifier{err: errors.New("token expired")})
		_, err := svc.GoogleLogin(context.Background(), &GoogleTokenRequest{IDToken: "tok"})
		assert.Error(t, err)
	})

	t.Run("unconfigured verifier", func(t *testing.T) {
		svc := newAuthService(t, db, nil)
		_, err := svc.GoogleLogin(context.Background(), &GoogleTokenRequest{IDToken: "tok"})
		assert.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	user := createTestUser(t, db)

	refresh, err := utils.GenerateRefreshToken(user.ID, 24)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.RefreshToken("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("blocked user cannot refresh", func(t *testing.T) {
		require.NoError(t, db.Model(user).Update("status", models.UserStatusBlocked).Error)
		_, err := svc.RefreshToken(refresh)
		assert.Error(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	user := createTestUser(t, db)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(user.ID, &ChangePasswordRequest{
			CurrentPassword: "Galat123",
			NewPassword:     "Naya12345",
		})
		assert.Error(t, err)
	})

	t.Run("password rotates", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(user.ID, &ChangePasswordRequest{
			CurrentPassword: "Secret123",
			NewPassword:     "Naya12345",
		}))

		_, err := svc.Login(&LoginRequest{Email: user.Email, Password: "Naya12345"})
		assert.NoError(t, err)
	})
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db, nil)
	user := createTestUser(t, db)

	updated, err := svc.UpdateProfile(user.ID, &UpdateProfileRequest{Name: "Priya S", Phone: "+919812345678"})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, "+919812345678", updated.Phone)

	// Empty fields leave the profile untouched.
	updated, err = svc.UpdateProfile(user.ID, &UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
}
