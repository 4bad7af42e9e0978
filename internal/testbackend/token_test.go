package testbackend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hospivibe/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	now := time.Now()
	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", "nurse", secret, now, time.Hour)
	require.NoError(t, err)

	got, err := UserIDFromToken(tok, secret, now)
	require.NoError(t, err)
	require.Equal(t, "user-123", got)
}

func TestUserIDFromToken_Expired(t *testing.T) {
	now := time.Now()
	secret := []byte("secret")

	tok, err := GenerateToken("u1", "patient", secret, now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = UserIDFromToken(tok, secret, now)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUserIDFromToken_WrongSecret(t *testing.T) {
	now := time.Now()
	tok, err := GenerateToken("u2", "doctor", []byte("right"), now, time.Hour)
	require.NoError(t, err)

	_, err = UserIDFromToken(tok, []byte("wrong"), now)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestUserIDFromToken_Garbage(t *testing.T) {
	_, err := UserIDFromToken("not-a-jwt", []byte("s"), time.Now())
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
