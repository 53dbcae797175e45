package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-leave/internal/domain"
)

func newJWTer(now time.Time) *JWTer {
	return &JWTer{
		Secret: []byte("0123456789abcdef0123"),
		Issuer: "campus-leave",
		TTL:    24 * time.Hour,
		Now:    func() time.Time { return now },
	}
}

func TestIssueParseRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	j := newJWTer(now)
	tok, err := j.Issue(domain.Identity{ID: "u1", Email: "a@x.io", Name: "Asha", Role: domain.RoleHOD, RoleID: "2"})
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "HOD", c.Role)
	assert.Equal(t, "2", c.RoleID)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), c.ExpiresAt.Unix())
}

func TestParseRejectsExpired(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	tok, err := newJWTer(now).Issue(domain.Identity{ID: "u1"})
	require.NoError(t, err)

	_, err = newJWTer(now.Add(25 * time.Hour)).Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	now := time.Now()
	tok, err := newJWTer(now).Issue(domain.Identity{ID: "u1"})
	require.NoError(t, err)

	other := newJWTer(now)
	other.Secret = []byte("another-secret-value")
	_, err = other.Parse(tok)
	assert.Error(t, err)
}
