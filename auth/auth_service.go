// Package auth implements login, signup, logout and session checks for blog owners.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-server/credentials"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/internal/metrics"
	"github.com/jrsteele09/go-blog-server/passwords"
	"github.com/jrsteele09/go-blog-server/sessions"
	"github.com/jrsteele09/go-blog-server/validation"
)

// InvalidCredentialsMessage is the only text shown for a failed login, whichever field was wrong.
const InvalidCredentialsMessage = "Invalid email or password"

// TenantRegistry resolves and creates the tenant schema owned by an email.
type TenantRegistry interface {
	GetTenantSchemaByEmail(ctx context.Context, email string) (string, error)
	RegisterTenant(ctx context.Context, email string) (string, error)
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Credentials credentials.Repo
	Tenants     TenantRegistry
}

// UserInfo is the identity handed back to the client after login or a session check.
type UserInfo struct {
	TenantSchema string         `json:"tenantSchemaName"`
	UserName     string         `json:"userName"`
	UserEmail    string         `json:"userEmail"`
	UserSettings map[string]any `json:"userSettings,omitempty"`
}

type SignupInput struct {
	Email    string
	UserName string
	Password string
}

// Service moves a user between the Anonymous and Authenticated states.
type Service struct {
	repos     Repos
	sessions  *sessions.Manager
	hasher    passwords.Hasher
	dummyHash string // verified against when the email is unknown, so both failures cost the same
	nowTime   func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithHasher(h passwords.Hasher) ServiceOption {
	return func(s *Service) {
		s.hasher = h
	}
}

func NewService(repos Repos, sessionManager *sessions.Manager, options ...ServiceOption) (*Service, error) {
	if repos.Credentials == nil {
		return nil, errors.New("[NewService] Credentials repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewService] Tenants registry is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}

	s := &Service{
		repos:    repos,
		sessions: sessionManager,
		hasher:   passwords.DefaultHasher,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	dummy, err := s.hasher.Hash("dummy-password-for-unknown-users")
	if err != nil {
		return nil, errors.Wrap(err, "[NewService] dummy hash")
	}
	s.dummyHash = dummy
	return s, nil
}

func (s *Service) Sessions() *sessions.Manager {
	return s.sessions
}

// Login checks the password for email and issues a session. A missing user and a
// wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*UserInfo, *sessions.Session, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_input").Inc()
		return nil, nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.Login] empty input")
	}

	cred, err := s.repos.Credentials.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.Login] unknown email")
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, errors.Wrap(err, "[Service.Login] Credentials.GetByEmail")
	}

	if !s.hasher.Verify(password, cred.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.Login] password mismatch")
	}

	schema, err := s.tenantSchema(ctx, cred)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, errors.Wrap(err, "[Service.Login]")
	}

	session, err := s.sessions.Issue(sessions.Identity{
		Email:        cred.Email,
		UserName:     cred.UserName,
		TenantSchema: schema,
	})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, errors.Wrap(err, "[Service.Login]")
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &UserInfo{
		TenantSchema: schema,
		UserName:     cred.UserName,
		UserEmail:    cred.Email,
		UserSettings: cred.Settings,
	}, session, nil
}

// ValidateSession returns the identity behind token. It fails closed: any error,
// including a lookup failure, is reported as ErrSessionInvalid.
func (s *Service) ValidateSession(ctx context.Context, token string) (*UserInfo, *sessions.Session, error) {
	session, err := s.sessions.Validate(ctx, token)
	if err != nil {
		metrics.SessionValidationsTotal.WithLabelValues("invalid").Inc()
		return nil, nil, errors.Wrap(err, "[Service.ValidateSession]")
	}

	cred, err := s.repos.Credentials.GetByEmail(ctx, session.Identity.Email)
	if err != nil {
		metrics.SessionValidationsTotal.WithLabelValues("invalid").Inc()
		return nil, nil, errors.Wrapf(apperrors.ErrSessionInvalid, "[Service.ValidateSession] credential lookup: %v", err)
	}

	metrics.SessionValidationsTotal.WithLabelValues("valid").Inc()
	return &UserInfo{
		TenantSchema: session.Identity.TenantSchema,
		UserName:     cred.UserName,
		UserEmail:    cred.Email,
		UserSettings: cred.Settings,
	}, session, nil
}

// Logout revokes token. Absent or invalid tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	metrics.LogoutsTotal.Inc()
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return errors.Wrap(err, "[Service.Logout]")
	}
	return nil
}

// Signup creates the credential and tenant for a new blog owner. Every violated
// field rule is reported together in a *apperrors.ValidationError.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*UserInfo, error) {
	email := validation.NormalizeEmail(in.Email)
	result := validation.Merge(
		validation.ValidateEmail(email),
		validation.ValidateUsername(in.UserName),
		validation.ValidatePassword(in.Password),
	)
	if !result.Valid {
		metrics.SignupsTotal.WithLabelValues("invalid_input").Inc()
		return nil, apperrors.NewValidationError(result.Errors...)
	}

	_, err := s.repos.Credentials.GetByEmail(ctx, email)
	if err == nil {
		metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
		return nil, errors.Wrap(apperrors.ErrEmailTaken, "[Service.Signup]")
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "[Service.Signup] Credentials.GetByEmail")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "[Service.Signup]")
	}

	schema, err := s.repos.Tenants.RegisterTenant(ctx, email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "[Service.Signup] RegisterTenant")
	}

	now := s.nowTime().UTC()
	cred := &credentials.Credential{
		Email:        email,
		UserName:     in.UserName,
		PasswordHash: hash,
		TenantSchema: schema,
		Settings:     map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Credentials.Insert(ctx, cred); err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return nil, errors.Wrap(err, "[Service.Signup] Credentials.Insert")
	}

	log.Info().Str("email", email).Str("tenant", schema).Msg("Signup complete")
	metrics.SignupsTotal.WithLabelValues("success").Inc()
	return &UserInfo{
		TenantSchema: schema,
		UserName:     cred.UserName,
		UserEmail:    email,
		UserSettings: cred.Settings,
	}, nil
}

// ChangePassword replaces the password hash after checking the current password.
// Sessions already issued stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, email, current, next string) error {
	email = validation.NormalizeEmail(email)
	cred, err := s.repos.Credentials.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.ChangePassword]")
	}
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	if !s.hasher.Verify(current, cred.PasswordHash) {
		return errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.ChangePassword]")
	}

	if result := validation.ValidatePassword(next); !result.Valid {
		return apperrors.NewValidationError(result.Errors...)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	if err := s.repos.Credentials.UpdatePasswordHash(ctx, email, hash, s.nowTime().UTC()); err != nil {
		return errors.Wrap(err, "[Service.ChangePassword] UpdatePasswordHash")
	}
	return nil
}

func (s *Service) Settings(ctx context.Context, email string) (map[string]any, error) {
	cred, err := s.repos.Credentials.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Settings]")
	}
	return cred.Settings, nil
}

// UpdateSettings shallow-merges partial into the stored settings: top-level keys
// are replaced and nested objects are not merged.
func (s *Service) UpdateSettings(ctx context.Context, email string, partial map[string]any) (map[string]any, error) {
	if _, ok := partial[""]; ok {
		return nil, apperrors.NewValidationError("Setting name is required")
	}
	merged, err := s.repos.Credentials.UpdateSettings(ctx, validation.NormalizeEmail(email), partial, s.nowTime().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateSettings]")
	}
	return merged, nil
}

func (s *Service) tenantSchema(ctx context.Context, cred *credentials.Credential) (string, error) {
	if cred.TenantSchema != "" {
		return cred.TenantSchema, nil
	}
	schema, err := s.repos.Tenants.GetTenantSchemaByEmail(ctx, cred.Email)
	if err != nil {
		return "", errors.Wrap(err, "GetTenantSchemaByEmail")
	}
	return schema, nil
}
