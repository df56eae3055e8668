package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthFixture(t *testing.T) (*MockStaffRepo, *MockBranchRepo, AuthService, security.TokenManager) {
	t.Helper()
	staffRepo := new(MockStaffRepo)
	branchRepo := new(MockBranchRepo)
	tm := security.NewTokenManager(testSecret, time.Hour, 24*time.Hour)
	svc := NewAuthService(staffRepo, NewSessionService(staffRepo, branchRepo), tm)
	return staffRepo, branchRepo, svc, tm
}

func testStaff(t *testing.T) *domain.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Staff{ID: "staff-1", BranchID: "branch-1", Name: "Sam", Email: "sam@shop.test", PasswordHash: string(hash)}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		staffRepo, branchRepo, svc, tm := newAuthFixture(t)
		staff := testStaff(t)
		staffRepo.On("GetByEmail", ctx, "sam@shop.test").Return(staff, nil)
		staffRepo.On("GetByID", ctx, "staff-1").Return(staff, nil)
		branchRepo.On("GetByID", ctx, "branch-1").Return(&domain.Branch{ID: "branch-1", Tax: domain.TaxSettings{
			Enabled: true, RatePercent: decimal.RequireFromString("7.5"), Inclusive: true,
		}}, nil)

		result, err := svc.Login(ctx, "sam@shop.test", "s3cret!")
		require.NoError(t, err)
		assert.Equal(t, "branch-1", result.Session.BranchID)
		assert.True(t, result.Session.Tax.Inclusive)

		claims, err := tm.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "staff-1", claims.StaffID)
		assert.Equal(t, security.TokenTypeAccess, claims.Type)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		staffRepo, _, svc, _ := newAuthFixture(t)
		staffRepo.On("GetByEmail", ctx, "sam@shop.test").Return(testStaff(t), nil)

		_, err := svc.Login(ctx, "sam@shop.test", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		staffRepo, _, svc, _ := newAuthFixture(t)
		staffRepo.On("GetByEmail", ctx, "who@shop.test").Return(nil, domain.ErrStaffNotFound)

		_, err := svc.Login(ctx, "who@shop.test", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesNewPair", func(t *testing.T) {
		staffRepo, branchRepo, svc, tm := newAuthFixture(t)
		staff := testStaff(t)
		staffRepo.On("GetByID", ctx, "staff-1").Return(staff, nil)
		branchRepo.On("GetByID", ctx, "branch-1").Return(&domain.Branch{ID: "branch-1"}, nil)

		refresh, err := tm.GenerateRefreshToken(security.TokenSubject{StaffID: "staff-1", BranchID: "branch-1"})
		require.NoError(t, err)

		result, err := svc.RefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("AccessTokenIsRejected", func(t *testing.T) {
		_, _, svc, tm := newAuthFixture(t)
		access, err := tm.GenerateAccessToken(security.TokenSubject{StaffID: "staff-1"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, security.ErrWrongTokenType)
	})

	t.Run("RemovedStaff", func(t *testing.T) {
		staffRepo, _, svc, tm := newAuthFixture(t)
		staffRepo.On("GetByID", ctx, "staff-9").Return(nil, domain.ErrStaffNotFound)
		refresh, err := tm.GenerateRefreshToken(security.TokenSubject{StaffID: "staff-9"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
