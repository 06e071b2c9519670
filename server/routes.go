package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Public pages
	s.RegisterRouteFunc("GET "+RouteAuthLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteAuthSignup, ChainMiddleware(s.SignupPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteAuthSignup, ChainMiddleware(s.SignupSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Protected pages; every unknown path is protected too
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	// JSON actions
	s.RegisterRouteFunc("POST "+RouteAPILogin, ChainMiddleware(s.LoginAction(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionAction(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPILogout, ChainMiddleware(s.LogoutAction(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPISignup, ChainMiddleware(s.SignupAction(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPIChangePassword, ChainMiddleware(s.ChangePasswordAction(), s.APIMiddleware(s.RequireSessionAPI)...))
	s.RegisterRouteFunc("PATCH "+RouteAPISettings, ChainMiddleware(s.UpdateSettingsAction(), s.APIMiddleware(s.RequireSessionAPI)...))
	s.RegisterRouteFunc("POST "+RouteAPIValidateField, ChainMiddleware(s.ValidateFieldHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
