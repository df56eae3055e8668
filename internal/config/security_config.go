package config

import (
	"strings"

	pb "rentaldesk-backend/api/gen/v1"
)

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurityConfig maps full gRPC method names to their required security level.
var EndpointSecurityConfig = map[string]SecurityLevel{
	pb.AuthService_Login_FullMethodName:        SecurityPublic,
	pb.AuthService_RefreshToken_FullMethodName: SecurityRefresh,

	pb.OrderService_GetSession_FullMethodName:        SecurityAccess,
	pb.OrderService_ListOrders_FullMethodName:        SecurityAccess,
	pb.OrderService_GetOrderStats_FullMethodName:     SecurityAccess,
	pb.OrderService_GetOrder_FullMethodName:          SecurityAccess,
	pb.OrderService_CreateOrder_FullMethodName:       SecurityAccess,
	pb.OrderService_UpdateOrderStatus_FullMethodName: SecurityAccess,

	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,
}

// publicServices are open at the service level, e.g. server reflection for grpcurl.
var publicServices = []string{
	"/grpc.reflection.v1.ServerReflection/",
	"/grpc.reflection.v1alpha.ServerReflection/",
}

// GetSecurityLevel returns the level for method. Unknown methods require an access token.
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	for _, prefix := range publicServices {
		if strings.HasPrefix(method, prefix) {
			return SecurityPublic
		}
	}
	return SecurityAccess
}
