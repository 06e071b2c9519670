package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-server/auth"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/sessions"
	"github.com/jrsteele09/go-blog-server/validation"
)

const contentTypeJSON = "application/json"

// actionResponse is the {success|error, data?} envelope returned by the form actions.
type actionResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
	Data    *auth.UserInfo `json:"data,omitempty"`
}

type sessionResponse struct {
	Valid bool           `json:"valid"`
	Data  *auth.UserInfo `json:"data,omitempty"`
}

type settingsResponse struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type settingsRequest struct {
	Settings map[string]any `json:"settings"`
}

type fieldRequest struct {
	Value string `json:"value"`
}

// fieldFeedback is the fragment htmx swaps in next to a signup input
var fieldFeedback = template.Must(template.New("feedback").Parse(
	`{{if .Valid}}<span class="ok">&#10003;</span>{{else}}<ul class="error">{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}`))

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(apperrors.ErrMalformedInput, err.Error())
	}
	return nil
}

// LoginAction authenticates a JSON {email, password} body and sets the session cookie.
// Every failure carries exactly one message.
func (s *Server) LoginAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil || !validation.Struct(req).Valid {
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: msgMissingLoginFields})
			return
		}

		user, session, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, actionResponse{Error: auth.InvalidCredentialsMessage})
			return
		}
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusInternalServerError, actionResponse{Error: msgInternal})
			return
		}

		sessions.SetCookie(w, r, session, s.nowTime())
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Data: user})
	}
}

// SessionAction reports whether the request's session cookie is valid. It always
// answers 200; a stale cookie is cleared.
func (s *Server) SessionAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessions.TokenFromRequest(r)
		user, _, err := s.auth.ValidateSession(r.Context(), token)
		if err != nil {
			if token != "" {
				sessions.ClearCookie(w, r)
			}
			writeJSON(w, http.StatusOK, sessionResponse{Valid: false})
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Valid: true, Data: user})
	}
}

func (s *Server) LogoutAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), sessions.TokenFromRequest(r)); err != nil {
			log.Err(err).Msg("LogoutAction: failed to revoke session")
		}
		sessions.ClearCookie(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SignupAction creates an account. The caller is not signed in afterwards.
func (s *Server) SignupAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: "Invalid request body"})
			return
		}

		user, err := s.auth.Signup(r.Context(), auth.SignupInput{
			Email:    req.Email,
			UserName: req.UserName,
			Password: req.Password,
		})
		if err != nil {
			status, msgs := signupFailure(err)
			if status == http.StatusInternalServerError {
				logError(r.Method, r.URL.Path, err)
			}
			writeJSON(w, status, actionResponse{Error: msgs[0], Errors: msgs})
			return
		}
		writeJSON(w, http.StatusCreated, actionResponse{Success: true, Data: user})
	}
}

func (s *Server) ChangePasswordAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: "Invalid request body"})
			return
		}
		if res := validation.Struct(req); !res.Valid {
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: res.Errors[0], Errors: res.Errors})
			return
		}

		user, _ := UserFromContext(r.Context())
		err := s.auth.ChangePassword(r.Context(), user.UserEmail, req.CurrentPassword, req.NewPassword)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, actionResponse{Success: true})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			writeJSON(w, http.StatusForbidden, actionResponse{Error: "Current password is incorrect"})
		case len(apperrors.ValidationMessages(err)) > 0:
			msgs := apperrors.ValidationMessages(err)
			writeJSON(w, http.StatusBadRequest, actionResponse{Error: msgs[0], Errors: msgs})
		default:
			logError(r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusInternalServerError, actionResponse{Error: msgInternal})
		}
	}
}

// UpdateSettingsAction merges {settings: {...}} into the signed-in user's settings.
func (s *Server) UpdateSettingsAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		if err := decodeJSON(w, r, &req); err != nil || req.Settings == nil {
			writeJSON(w, http.StatusBadRequest, settingsResponse{Error: "settings object is required"})
			return
		}

		user, _ := UserFromContext(r.Context())
		merged, err := s.auth.UpdateSettings(r.Context(), user.UserEmail, req.Settings)
		if msgs := apperrors.ValidationMessages(err); len(msgs) > 0 {
			writeJSON(w, http.StatusBadRequest, settingsResponse{Error: msgs[0]})
			return
		}
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusInternalServerError, settingsResponse{Error: msgInternal})
			return
		}
		writeJSON(w, http.StatusOK, settingsResponse{Success: true, Settings: merged})
	}
}

// ValidateFieldHandler runs one field validator for live form feedback. htmx requests
// get an HTML fragment and everything else gets the JSON result.
func (s *Server) ValidateFieldHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		validate, ok := fieldValidators[r.PathValue("field")]
		if !ok {
			http.NotFound(w, r)
			return
		}

		var value string
		if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
			var req fieldRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, actionResponse{Error: "Invalid request body"})
				return
			}
			value = req.Value
		} else {
			value = r.FormValue("value")
		}

		result := validate(value)
		if isHTMXRequest(r) {
			w.Header().Set("Content-Type", contentTypeHTML)
			if err := fieldFeedback.Execute(w, result); err != nil {
				log.Err(err).Msg("Failed to render field feedback")
			}
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

var fieldValidators = map[string]func(string) validation.Result{
	"password": validation.ValidatePassword,
	"username": validation.ValidateUsername,
	"email": func(raw string) validation.Result {
		return validation.ValidateEmail(validation.NormalizeEmail(raw))
	},
	"id": func(raw string) validation.Result {
		_, res := validation.ParseID(raw)
		return res
	},
}
