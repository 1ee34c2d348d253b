package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps gRPC methods and REST route templates to their
// required security level. REST keys are "<METHOD> <path template>".
var EndpointSecurityConfig = map[string]SecurityLevel{
	// gRPC: health is the only registered service besides reflection, so
	// reflection (registered only when server.grpc_reflection is set) is
	// the one token-guarded gRPC surface.
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityAccess,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityAccess,

	// REST - Public
	"GET /healthz": SecurityPublic,

	// REST - Access Protected
	"GET /api/v1/products/{id}/availability":   SecurityAccess,
	"GET /api/v1/quotations/{id}/availability": SecurityAccess,
	"POST /api/v1/quotations/{id}/confirm":     SecurityAccess,
	"GET /api/v1/orders/{id}":                  SecurityAccess,
	"GET /api/v1/orders/{id}/invoice":          SecurityAccess,
	"POST /api/v1/orders/{id}/pickup/ready":    SecurityAccess,
	"POST /api/v1/orders/{id}/pickup/complete": SecurityAccess,
	"POST /api/v1/orders/{id}/return":          SecurityAccess,
	"GET /api/v1/notifications":                SecurityAccess,
	"POST /api/v1/notifications/{id}/read":     SecurityAccess,
	"POST /api/v1/jobs/lifecycle-sweep":        SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
