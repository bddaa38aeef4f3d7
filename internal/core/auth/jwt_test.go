package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: RoleUser}

func newTestJWTer(now *time.Time) *JWTer {
	return &JWTer{
		Secret: []byte("test-secret-at-least-16-chars!!"),
		Issuer: "1ps-test",
		TTL:    time.Hour,
		Now:    func() time.Time { return *now },
	}
}

func TestIssueParse_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := newTestJWTer(&now)

	tok, err := j.Issue(alice)
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, alice, c.Identity())
	assert.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time.UTC())
}

func TestParse_ValidUntilTTL(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := issued
	j := newTestJWTer(&now)

	tok, err := j.Issue(alice)
	require.NoError(t, err)

	now = issued.Add(59 * time.Minute)
	_, err = j.Parse(tok)
	assert.NoError(t, err)

	now = issued.Add(time.Hour + time.Second)
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Rejects(t *testing.T) {
	now := time.Now()
	j := newTestJWTer(&now)
	tok, err := j.Issue(alice)
	require.NoError(t, err)

	other := newTestJWTer(&now)
	other.Secret = []byte("another-secret-with-16-chars!!")
	otherTok, err := other.Issue(alice)
	require.NoError(t, err)

	foreign := newTestJWTer(&now)
	foreign.Issuer = "someone-else"
	foreignTok, err := foreign.Issue(alice)
	require.NoError(t, err)

	tests := []struct {
		name string
		tok  string
	}{
		{"tampered signature", tok[:len(tok)-3] + "xxx"},
		{"wrong secret", otherTok},
		{"wrong issuer", foreignTok},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Parse(tt.tok)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestIdentity_IsAdmin(t *testing.T) {
	assert.False(t, alice.IsAdmin())
	assert.True(t, Identity{Role: RoleAdmin}.IsAdmin())
}
