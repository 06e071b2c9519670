package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// UI Routes
	RouteIndex      = "/"
	RouteAuthLogin  = "/auth/login"
	RouteAuthSignup = "/auth/signup"
	RouteAuthLogout = "/auth/logout"

	// JSON action routes
	RouteAPILogin          = "/api/auth/login"
	RouteAPISession        = "/api/auth/session"
	RouteAPILogout         = "/api/auth/logout"
	RouteAPISignup         = "/api/auth/signup"
	RouteAPIChangePassword = "/api/auth/password"
	RouteAPISettings       = "/api/settings"
	RouteAPIValidateField  = "/api/validate/{field}"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
