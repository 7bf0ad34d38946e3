package auth

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/snapfeed/snapfeed/internal/domain/auth"
)

var testSecret = []byte("test-secret")

func claimsAt(userID int64, now time.Time, ttl time.Duration) domainauth.AccessClaims {
	return domainauth.AccessClaims{
		Sub: strconv.FormatInt(userID, 10),
		Iat: now.Unix(),
		Exp: now.Add(ttl).Unix(),
	}
}

func TestToken_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := SignedString(claimsAt(42, now, time.Hour), testSecret)
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	got, err := ParseAndValidate(tok, testSecret, now.Add(30*time.Minute))
	require.NoError(t, err)
	require.Equal(t, "42", got.Sub)
	require.Equal(t, now.Unix(), got.Iat)
}

func TestToken_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := SignedString(claimsAt(7, now, time.Hour), testSecret)
	require.NoError(t, err)

	_, err = ParseAndValidate(tok, testSecret, now.Add(time.Hour+time.Second))
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestToken_UsedBeforeIssued(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := SignedString(claimsAt(7, now, time.Hour), testSecret)
	require.NoError(t, err)

	_, err = ParseAndValidate(tok, testSecret, now.Add(-time.Minute))
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestToken_WrongSecret(t *testing.T) {
	now := time.Now().UTC()

	tok, err := SignedString(claimsAt(1, now, time.Hour), testSecret)
	require.NoError(t, err)

	_, err = ParseAndValidate(tok, []byte("other-secret"), now)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestToken_TamperedPayload(t *testing.T) {
	now := time.Now().UTC()

	tok, err := SignedString(claimsAt(1, now, time.Hour), testSecret)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	other, err := SignedString(claimsAt(999, now, time.Hour), testSecret)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	_, err = ParseAndValidate(forged, testSecret, now)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestToken_Malformed(t *testing.T) {
	now := time.Now().UTC()

	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "!!.!!.!!"} {
		_, err := ParseAndValidate(tok, testSecret, now)
		require.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.NotContains(t, HashToken("abc"), "=")
}

func TestGenerateRawToken_Unique(t *testing.T) {
	a, err := GenerateRawToken(32)
	require.NoError(t, err)
	b, err := GenerateRawToken(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
