package grpc

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"rentaldesk-backend/internal/domain"
)

// Metadata keys set by the auth interceptor after the token is verified.
const (
	StaffIDKey    = "staff-id"
	BranchIDKey   = "branch-id"
	SuperAdminKey = "super-admin"
)

// GetStaffFromContext extracts the authenticated staff member from the gRPC metadata.
func GetStaffFromContext(ctx context.Context) (*domain.StaffContext, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	staffIDs := md.Get(StaffIDKey)
	if len(staffIDs) == 0 || staffIDs[0] == "" {
		return nil, status.Errorf(codes.Unauthenticated, "staff_id is not provided in metadata")
	}

	staff := &domain.StaffContext{StaffID: staffIDs[0]}
	if branches := md.Get(BranchIDKey); len(branches) > 0 {
		staff.BranchID = branches[0]
	}
	if flags := md.Get(SuperAdminKey); len(flags) > 0 {
		superAdmin, err := strconv.ParseBool(flags[0])
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid super-admin flag: %v", err)
		}
		staff.IsSuperAdmin = superAdmin
	}
	return staff, nil
}

// bearerToken returns the token of the authorization header, without the
// Bearer prefix, or "" when there is none.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	token := values[0]
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = token[7:]
	}
	return token
}
