package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityAccess                       // Access token of an active user required
	SecurityManager                      // Access token of an active manager required
)

// EndpointSecurityConfig maps "METHOD path-template" to its required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operations
	"GET /healthz": SecurityPublic,

	// Auth - Public
	"POST /api/auth/register":     SecurityPublic,
	"POST /api/auth/login":        SecurityPublic,
	"POST /api/auth/verify-token": SecurityPublic,

	// Auth - Access Protected
	"POST /api/auth/logout":       SecurityAccess,
	"GET /api/auth/profile":       SecurityAccess,
	"PUT /api/auth/profile":       SecurityAccess,
	"GET /api/auth/users/{id}":    SecurityAccess,
	"GET /api/auth/users":         SecurityManager,
	"DELETE /api/auth/users/{id}": SecurityManager,

	// Products - Public catalog
	"GET /api/products":           SecurityPublic,
	"GET /api/products/locations": SecurityPublic,
	"GET /api/products/{id}":      SecurityPublic,

	// Products - Manager
	"POST /api/products":        SecurityManager,
	"PUT /api/products/{id}":    SecurityManager,
	"DELETE /api/products/{id}": SecurityManager,

	// Rentals
	"POST /api/rentals":             SecurityAccess,
	"GET /api/rentals":              SecurityAccess,
	"GET /api/rentals/{id}":         SecurityAccess,
	"PUT /api/rentals/{id}/status":  SecurityManager,
	"PUT /api/rentals/{id}/payment": SecurityManager,
}

// GetSecurityLevel returns the level for a route, defaulting to SecurityAccess
// so that unregistered routes are never public.
func GetSecurityLevel(method, pathTemplate string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[method+" "+pathTemplate]; ok {
		return level
	}
	return SecurityAccess
}
