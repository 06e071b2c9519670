package sessions

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
)

const DefaultMaxAge = 7 * 24 * time.Hour

// claims is the payload of a session token.
type claims struct {
	jwt.RegisteredClaims
	Tenant string `json:"tenant"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Manager owns the session lifecycle. Expiry is absolute: validating a session
// never extends it.
type Manager struct {
	signer  hmacSigner
	revoker Revoker
	maxAge  time.Duration
	nowTime func() time.Time
}

type ManagerOption func(*Manager)

func WithMaxAge(maxAge time.Duration) ManagerOption {
	return func(m *Manager) {
		if maxAge > 0 {
			m.maxAge = maxAge
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithRevoker replaces the default in-memory revocation list.
func WithRevoker(r Revoker) ManagerOption {
	return func(m *Manager) {
		m.revoker = r
	}
}

func NewManager(secret []byte, options ...ManagerOption) (*Manager, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	m := &Manager{
		signer:  hmacSigner{secret: secret},
		maxAge:  DefaultMaxAge,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.revoker == nil {
		m.revoker = NewMemoryRevoker(WithRevokerNowTime(m.nowTime))
	}
	return m, nil
}

func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue signs a new session for id.
func (m *Manager) Issue(id Identity) (*Session, error) {
	// Token timestamps have second precision
	now := m.nowTime().UTC().Truncate(time.Second)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
		Tenant: id.TenantSchema,
		Email:  id.Email,
		Name:   id.UserName,
	}
	token, err := m.signer.sign(c)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue]")
	}
	return sessionFromClaims(token, &c), nil
}

// Validate returns the session for token. Any failure, including an unreachable
// revocation list, is reported as ErrSessionInvalid.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	c, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrSessionInvalid, "revocation check: %v", err)
	}
	if revoked {
		return nil, errors.Wrap(apperrors.ErrSessionInvalid, "revoked")
	}
	return sessionFromClaims(token, c), nil
}

// Revoke ends the session behind token. Tokens that are absent, malformed or
// already expired need no revocation and succeed.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	c, err := m.parse(token)
	if err != nil {
		return nil
	}
	if err := m.revoker.Revoke(ctx, c.ID, c.ExpiresAt.Time); err != nil {
		return errors.Wrap(err, "[Manager.Revoke]")
	}
	return nil
}

func (m *Manager) parse(token string) (*claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.Wrap(apperrors.ErrSessionInvalid, "empty token")
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, m.signer.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.nowTime),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.Wrapf(apperrors.ErrSessionInvalid, "parse: %v", err)
	}
	if c.ID == "" || c.Tenant == "" || c.Email == "" {
		return nil, errors.Wrap(apperrors.ErrSessionInvalid, "missing claims")
	}
	return &c, nil
}

func sessionFromClaims(token string, c *claims) *Session {
	return &Session{
		Token: token,
		ID:    c.ID,
		Identity: Identity{
			Email:        c.Email,
			UserName:     c.Name,
			TenantSchema: c.Tenant,
		},
		IssuedAt:  c.IssuedAt.Time.UTC(),
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}
}
