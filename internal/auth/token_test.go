package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	issuer, err := NewIssuer("test-secret", 0, WithClock(clock.Now))
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	var nilIssuer *Issuer
	_, err = nilIssuer.Issue(Claims{UserID: "u1"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(t, clock)
	assert.Equal(t, DefaultTokenTTL, issuer.TTL())

	token, err := issuer.Issue(Claims{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "u1", Username: "alice"}, claims)
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issued}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.Issue(Claims{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	clock.now = issued.Add(24*time.Hour - time.Second)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	clock.now = issued.Add(24*time.Hour + time.Second)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)
	other, err := NewIssuer("other-secret", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	token, err := other.Issue(Claims{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyRejectsMalformedAndUnsigned(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	_, err := issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "u1",
		"exp":    clock.now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	token, err := issuer.Issue(Claims{UserID: "u1"})
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	_, err = issuer.Verify(parts[0] + "." + parts[1] + ".tampered")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyRequiresExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestIssuer(t, clock)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "u1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
