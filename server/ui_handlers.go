package server

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-server/auth"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/sessions"
)

const (
	msgMissingLoginFields = "Email and password are required"
	msgEmailTaken         = "An account with this email already exists"
	msgSignupComplete     = "Account created, please sign in"
	msgSessionExpired     = "Session expired or invalid"
	msgInternal           = "Something went wrong, please try again"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Notice  string
	Email   string // Preserve email on error
}

type SignupPageData struct {
	AppName  string
	Errors   []string
	Email    string
	UserName string
}

type IndexPageData struct {
	AppName  string
	User     *auth.UserInfo
	NotFound bool
}

// LoginPageHandler displays the login page. A visitor who is already signed in goes home.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessions.TokenFromRequest(r); token != "" {
			if _, _, err := s.auth.ValidateSession(r.Context(), token); err == nil {
				redirectSuccess(w, r, RouteIndex)
				return
			}
		}

		q := r.URL.Query()
		renderPage(w, s.pages.login, http.StatusOK, LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   q.Get("error"),
			Notice:  q.Get("notice"),
			Email:   q.Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		if email == "" || password == "" {
			redirectWithParams(w, r, RouteAuthLogin, url.Values{"error": {msgMissingLoginFields}, "email": {email}})
			return
		}

		_, session, err := s.auth.Login(r.Context(), email, password)
		if err != nil {
			msg := auth.InvalidCredentialsMessage
			if !errors.Is(err, apperrors.ErrInvalidCredentials) {
				logError(r.Method, r.URL.Path, err)
				msg = msgInternal
			}
			redirectWithParams(w, r, RouteAuthLogin, url.Values{"error": {msg}, "email": {email}})
			return
		}

		sessions.SetCookie(w, r, session, s.nowTime())
		redirectSuccess(w, r, RouteIndex)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), sessions.TokenFromRequest(r)); err != nil {
			log.Err(err).Msg("Logout: failed to revoke session")
		}
		sessions.ClearCookie(w, r)
		redirectSuccess(w, r, RouteAuthLogin)
	}
}

func (s *Server) SignupPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, s.pages.signup, http.StatusOK, SignupPageData{AppName: s.config.GetAppName()})
	}
}

// SignupSubmissionHandler creates the account and sends the new owner to the login page.
// Validation problems re-render the form with every message.
func (s *Server) SignupSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		in := auth.SignupInput{
			Email:    r.FormValue("email"),
			UserName: r.FormValue("userName"),
			Password: r.FormValue("password"),
		}

		_, err := s.auth.Signup(r.Context(), in)
		if err != nil {
			status, msgs := signupFailure(err)
			if status == http.StatusInternalServerError {
				logError(r.Method, r.URL.Path, err)
			}
			renderPage(w, s.pages.signup, status, SignupPageData{
				AppName:  s.config.GetAppName(),
				Errors:   msgs,
				Email:    in.Email,
				UserName: in.UserName,
			})
			return
		}

		redirectWithParams(w, r, RouteAuthLogin, url.Values{"notice": {msgSignupComplete}, "email": {in.Email}})
	}
}

// IndexHandler renders the home page of the signed-in owner
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		renderPage(w, s.pages.index, http.StatusOK, IndexPageData{AppName: s.config.GetAppName(), User: user})
	}
}

// NotFoundHandler answers unknown paths, which are only reachable with a valid session
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		renderPage(w, s.pages.index, http.StatusNotFound, IndexPageData{AppName: s.config.GetAppName(), User: user, NotFound: true})
	}
}

// signupFailure maps a Signup error to a status and the messages to show.
func signupFailure(err error) (int, []string) {
	if msgs := apperrors.ValidationMessages(err); len(msgs) > 0 {
		return http.StatusBadRequest, msgs
	}
	if errors.Is(err, apperrors.ErrEmailTaken) {
		return http.StatusConflict, []string{msgEmailTaken}
	}
	return http.StatusInternalServerError, []string{msgInternal}
}
