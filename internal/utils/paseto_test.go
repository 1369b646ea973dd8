package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestNewPasetoUtil_KeyLength(t *testing.T) {
	_, err := NewPasetoUtil([]byte("short"), time.Hour)
	assert.Error(t, err)

	p, err := NewPasetoUtil(testKey(1), time.Hour)
	assert.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPasetoUtil_RoundTrip(t *testing.T) {
	p, err := NewPasetoUtil(testKey(1), time.Hour)
	require.NoError(t, err)

	tokenString, issued, err := p.GenerateToken(42, "admin")
	require.NoError(t, err)
	assert.Contains(t, tokenString, "v4.local.")

	claims, err := p.ParseToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestPasetoUtil_Expired(t *testing.T) {
	p, err := NewPasetoUtil(testKey(1), -time.Minute)
	require.NoError(t, err)

	tokenString, _, err := p.GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = p.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasetoUtil_WrongKey(t *testing.T) {
	p1, _ := NewPasetoUtil(testKey(1), time.Hour)
	p2, _ := NewPasetoUtil(testKey(2), time.Hour)

	tokenString, _, err := p1.GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = p2.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasetoUtil_Garbage(t *testing.T) {
	p, _ := NewPasetoUtil(testKey(1), time.Hour)

	_, err := p.ParseToken("v4.local.garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
