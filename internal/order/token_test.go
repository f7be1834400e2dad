package order

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "order-token-test-secret-0123456789"

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker(testSecret, time.Hour)

	tok, err := tm.New("o_1")
	require.NoError(t, err)

	c, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "o_1", c.OrderID)
	assert.Equal(t, "o_1", c.Subject)
	assert.Equal(t, tokenIssuer, c.Issuer)
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker(testSecret, time.Hour)

	other, err := NewTokenMaker("a-completely-different-secret-value", time.Hour).New("o_1")
	require.NoError(t, err)
	_, err = tm.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{OrderID: "o_1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	_, err = tm.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMaker_Expires(t *testing.T) {
	tm := NewTokenMaker(testSecret, time.Minute)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm.now = func() time.Time { return now }

	tok, err := tm.New("o_1")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = tm.Parse(tok)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
