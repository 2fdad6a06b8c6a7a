package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
)

func newSession(clock *store.Clock, ttl time.Duration) store.Session {
	now := clock.Now().UTC()
	return store.Session{ID: "sess-1", UserID: "user_000001", CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	clock := store.NewClock()
	m, err := NewTokenManager("secret", time.Hour, clock)
	require.NoError(t, err)

	token, err := m.Issue(newSession(clock, time.Hour))
	require.NoError(t, err)

	sid, uid, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sid)
	assert.Equal(t, "user_000001", uid)
}

func TestTokenManager_Defaults(t *testing.T) {
	m, err := NewTokenManager("", 0, store.NewClock())
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.TTL())
	assert.Len(t, m.secret, 32)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	clock := store.NewClock()
	issuer, err := NewTokenManager("secret-a", time.Hour, clock)
	require.NoError(t, err)
	verifier, err := NewTokenManager("secret-b", time.Hour, clock)
	require.NoError(t, err)

	token, err := issuer.Issue(newSession(clock, time.Hour))
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiresWithSimulatedClock(t *testing.T) {
	clock := store.NewClock()
	m, err := NewTokenManager("secret", time.Hour, clock)
	require.NoError(t, err)

	token, err := m.Issue(newSession(clock, time.Hour))
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, _, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour, store.NewClock())
	require.NoError(t, err)

	for _, token := range []string{"not-a-token", "a.b.c", ""} {
		_, _, err := m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
