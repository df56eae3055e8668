package interceptor

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apigrpc "rentaldesk-backend/internal/api/grpc"
	"rentaldesk-backend/internal/config"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary authenticates unary RPCs and stamps the staff identity into the incoming metadata.
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		newCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// Stream applies the same rules to streaming RPCs such as health Watch.
func (i *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		newCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: newCtx})
	}
}

func (i *AuthInterceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	level := config.GetSecurityLevel(method)
	if level == config.SecurityPublic {
		return ctx, nil
	}

	md, _ := metadata.FromIncomingContext(ctx)
	token, err := bearerFrom(md)
	if err != nil {
		return nil, err
	}

	claims, err := i.tokenManager.ValidateToken(token)
	if err != nil {
		logger.Debug("Rejected token", "method", method, "error", err)
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	if err := checkSecurityLevel(level, claims); err != nil {
		return nil, err
	}

	// Identity headers sent by the client are overwritten, never trusted.
	md = md.Copy()
	md.Set(apigrpc.StaffIDKey, claims.StaffID)
	md.Set(apigrpc.BranchIDKey, claims.BranchID)
	md.Set(apigrpc.SuperAdminKey, strconv.FormatBool(claims.SuperAdmin))
	return metadata.NewIncomingContext(ctx, md), nil
}

func bearerFrom(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	header := strings.TrimSpace(values[0])
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token), nil
	}
	return header, nil
}

func checkSecurityLevel(level config.SecurityLevel, claims *security.StaffClaims) error {
	switch level {
	case config.SecurityAccess:
		if claims.Type != security.TokenTypeAccess {
			return status.Error(codes.PermissionDenied, "access token required")
		}
	case config.SecurityRefresh:
		if claims.Type != security.TokenTypeRefresh {
			return status.Error(codes.PermissionDenied, "refresh token required")
		}
	}
	return nil
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context {
	return s.ctx
}
