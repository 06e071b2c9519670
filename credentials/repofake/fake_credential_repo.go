package credentialrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-blog-server/credentials"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
)

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

type FakeCredentialRepo struct {
	creds map[string]*credentials.Credential // email to credential
	lock  sync.RWMutex
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{creds: make(map[string]*credentials.Credential)}
}

func (cr *FakeCredentialRepo) Insert(_ context.Context, cred *credentials.Credential) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if _, ok := cr.creds[cred.Email]; ok {
		return apperrors.ErrEmailTaken
	}
	cr.creds[cred.Email] = cred.Clone()
	return nil
}

func (cr *FakeCredentialRepo) GetByEmail(_ context.Context, email string) (*credentials.Credential, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	c, ok := cr.creds[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c.Clone(), nil
}

func (cr *FakeCredentialRepo) UpdatePasswordHash(_ context.Context, email, hash string, at time.Time) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	c, ok := cr.creds[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.PasswordHash = hash
	c.UpdatedAt = at
	return nil
}

func (cr *FakeCredentialRepo) UpdateSettings(_ context.Context, email string, partial map[string]any, at time.Time) (map[string]any, error) {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	c, ok := cr.creds[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c.Settings = credentials.MergeSettings(c.Settings, partial)
	c.UpdatedAt = at
	return credentials.MergeSettings(c.Settings, nil), nil
}
