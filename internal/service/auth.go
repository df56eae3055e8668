package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/repository"
	"rentaldesk-backend/internal/security"
)

type authService struct {
	staffRepo    repository.StaffRepository
	sessions     SessionService
	tokenManager security.TokenManager
}

func NewAuthService(staffRepo repository.StaffRepository, sessions SessionService, tm security.TokenManager) AuthService {
	return &authService{
		staffRepo:    staffRepo,
		sessions:     sessions,
		tokenManager: tm,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	logger.EnterMethod("authService.Login", "email", email)

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrStaffNotFound) {
			logger.Error("Staff lookup failed", "error", err)
		}
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "staffID", staff.ID)
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(ctx, staff)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err, "staffID", staff.ID)
		return nil, err
	}
	logger.ExitMethod("authService.Login", "staffID", staff.ID)
	return result, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (*AuthResult, error) {
	claims, err := s.tokenManager.ValidateToken(refresh)
	if err != nil {
		return nil, err
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, security.ErrWrongTokenType
	}

	// Branch moves and removals take effect on refresh.
	staff, err := s.staffRepo.GetByID(ctx, claims.StaffID)
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(ctx, staff)
}

func (s *authService) issue(ctx context.Context, staff *domain.Staff) (*AuthResult, error) {
	subject := security.TokenSubject{
		StaffID:    staff.ID,
		BranchID:   staff.BranchID,
		Email:      staff.Email,
		SuperAdmin: staff.IsSuperAdmin,
	}
	access, err := s.tokenManager.GenerateAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokenManager.GenerateRefreshToken(subject)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetSession(ctx, staff.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: access, RefreshToken: refresh, Session: session}, nil
}

// HashPassword returns the bcrypt hash stored for a staff password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
