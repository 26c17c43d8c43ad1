package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/localstore"
)

func TestSessionLifecycle(t *testing.T) {
	kv := localstore.NewMemoryStore()
	s := New(kv, zap.NewNop())

	assert.Empty(t, s.Token())

	require.NoError(t, s.Store(domain.TokenResponse{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Equal(t, "abc", s.Token())

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
	require.NoError(t, s.Clear())
}

func TestSessionExpired(t *testing.T) {
	kv := localstore.NewMemoryStore()
	s := New(kv, zap.NewNop())
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Store(domain.TokenResponse{Token: "abc", ExpiresAt: expires}))

	s.now = func() time.Time { return expires.Add(-time.Minute) }
	assert.Equal(t, "abc", s.Token())

	s.now = func() time.Time { return expires.Add(time.Minute) }
	assert.Empty(t, s.Token())
}

func TestSessionUnreadable(t *testing.T) {
	kv := localstore.NewMemoryStore()
	require.NoError(t, kv.Save(localstore.KeyAuth, []byte(`"just a string"`)))

	assert.Empty(t, New(kv, zap.NewNop()).Token())
}
