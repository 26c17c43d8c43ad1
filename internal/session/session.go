// Package session keeps the shopper's bearer token in the local store.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/localstore"
)

// KeyValue is the local store the session lives in
type KeyValue interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

type Session struct {
	kv     KeyValue
	now    func() time.Time
	logger *zap.Logger
}

func New(kv KeyValue, logger *zap.Logger) *Session {
	return &Session{kv: kv, now: time.Now, logger: logger}
}

// Token returns the stored bearer token, or "" when signed out or expired
func (s *Session) Token() string {
	raw, err := s.kv.Load(localstore.KeyAuth)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			s.logger.Warn("Failed to read session", zap.Error(err))
		}
		return ""
	}

	var tok domain.TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		s.logger.Warn("Discarding unreadable session", zap.Error(err))
		return ""
	}
	if !tok.ExpiresAt.IsZero() && s.now().After(tok.ExpiresAt) {
		return ""
	}
	return tok.Token
}

// Store saves a token issued by login
func (s *Session) Store(tok domain.TokenResponse) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return s.kv.Save(localstore.KeyAuth, raw)
}

// Clear signs the shopper out
func (s *Session) Clear() error {
	if err := s.kv.Delete(localstore.KeyAuth); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return err
	}
	return nil
}
