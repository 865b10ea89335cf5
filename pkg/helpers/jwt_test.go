package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 7*24*time.Hour, "eduflex")
	tok, exp, err := m.Generate("u1", "student")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestJWTRejectsExpired(t *testing.T) {
	issued := time.Now().Add(-8 * 24 * time.Hour)
	m := NewJWTManager("secret", 7*24*time.Hour, "eduflex").WithClock(func() time.Time { return issued })
	tok, _, err := m.Generate("u1", "student")
	require.NoError(t, err)

	m.WithClock(time.Now)
	_, err = m.Parse(tok)
	assert.Error(t, err)
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	tok, _, err := NewJWTManager("old-secret", time.Hour, "eduflex").Generate("u1", "admin")
	require.NoError(t, err)

	_, err = NewJWTManager("rotated-secret", time.Hour, "eduflex").Parse(tok)
	assert.Error(t, err)
}

func TestJWTRejectsNoneAndGarbage(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "eduflex")
	claims := &Claims{UserID: "u1", Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{none, "", "not.a.jwt", "abc"} {
		_, err := m.Parse(tok)
		assert.Error(t, err, tok)
	}
}

func TestJWTRequiresExpiry(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "eduflex")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1", Role: "admin"}).SignedString(m.Secret)
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.Error(t, err)
}
