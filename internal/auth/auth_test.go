package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("s3cret!")
	require.NoError(t, err)
	h2, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", h1)
	assert.NotEqual(t, h1, h2, "per-call salt should produce distinct hashes")
	assert.True(t, CheckPassword("s3cret!", h1))
	assert.True(t, CheckPassword("s3cret!", h2))
	assert.False(t, CheckPassword("wrong", h1))
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("anything", ""))
	assert.False(t, CheckPassword("anything", "not-a-bcrypt-hash"))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(clock *fakeClock) *TokenManager {
	m := NewTokenManager("test-secret", time.Hour)
	m.now = clock.Now
	return m
}

var alice = models.Identity{ID: 7, Name: "Alice", Email: "alice@example.com"}

func TestTokenManager_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	token, exp, err := m.Issue(alice)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), exp)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestTokenManager_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	token, _, err := m.IssueWithTTL(alice, time.Second)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Second)
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Tampered(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(clock)

	token, _, err := m.Issue(alice)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestManager(clock)
	token, _, err := issuer.Issue(alice)
	require.NoError(t, err)

	other := NewTokenManager("another-secret", time.Hour)
	other.now = clock.Now
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	m := NewTokenManager("test-secret", 0)
	m.now = clock.Now

	_, exp, err := m.Issue(alice)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(DefaultTokenTTL), exp)
}

func TestTokenManager_Malformed(t *testing.T) {
	m := NewTokenManager("test-secret", 0)

	for _, token := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
