package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "rentaldesk-backend/api/gen/v1"
	"rentaldesk-backend/internal/service"
)

type AuthHandler struct {
	pb.UnimplementedAuthServiceServer
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}
	result, err := h.authSvc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return mapAuthResult(result), nil
}

// RefreshToken reads the refresh token from the authorization header, which
// the interceptor has already checked, or from the request body.
func (h *AuthHandler) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.AuthResponse, error) {
	token := req.RefreshToken
	if token == "" {
		token = bearerToken(ctx)
	}
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}
	result, err := h.authSvc.RefreshToken(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}
	return mapAuthResult(result), nil
}

func mapAuthResult(r *service.AuthResult) *pb.AuthResponse {
	return &pb.AuthResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Session:      MapStaffContextToProto(r.Session),
	}
}
