package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const issuer = "rentaldesk-auth"

// StaffClaims carries the signed-in staff member and the branch they work at.
type StaffClaims struct {
	StaffID    string    `json:"staff_id"`
	BranchID   string    `json:"branch_id"`
	Email      string    `json:"email,omitempty"`
	SuperAdmin bool      `json:"super_admin,omitempty"`
	Type       TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenSubject is what a token is minted for.
type TokenSubject struct {
	StaffID    string
	BranchID   string
	Email      string
	SuperAdmin bool
}

type TokenManager interface {
	GenerateAccessToken(subject TokenSubject) (string, error)
	GenerateRefreshToken(subject TokenSubject) (string, error)
	ValidateToken(tokenString string) (*StaffClaims, error)
}

type tokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates an HS256 token manager. Zero TTLs fall back to
// one hour for access tokens and seven days for refresh tokens.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &tokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *tokenManager) GenerateAccessToken(subject TokenSubject) (string, error) {
	return m.sign(subject, TokenTypeAccess, m.accessTTL, "api-access")
}

func (m *tokenManager) GenerateRefreshToken(subject TokenSubject) (string, error) {
	return m.sign(subject, TokenTypeRefresh, m.refreshTTL, "token-refresh")
}

func (m *tokenManager) sign(subject TokenSubject, typ TokenType, ttl time.Duration, audience string) (string, error) {
	now := m.now()
	claims := StaffClaims{
		StaffID:    subject.StaffID,
		BranchID:   subject.BranchID,
		Email:      subject.Email,
		SuperAdmin: subject.SuperAdmin,
		Type:       typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.StaffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*StaffClaims); ok && token.Valid {
		if claims.StaffID == "" {
			claims.StaffID = claims.Subject
		}
		if claims.StaffID == "" {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
