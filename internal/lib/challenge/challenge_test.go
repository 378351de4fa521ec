package challenge

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("test-secret", 5*time.Minute)

	ch, err := iss.Issue(now)
	require.NoError(t, err)
	require.NotEmpty(t, ch.Token)
	assert.True(t, ch.A >= 1 && ch.A <= maxOperand)
	assert.True(t, ch.B >= 1 && ch.B <= maxOperand)
	assert.True(t, ch.ExpiresAt.Equal(now.Add(5*time.Minute)))

	require.NoError(t, iss.Verify(ch.Token, ch.A+ch.B, now.Add(time.Minute)))
}

func TestVerify_WrongAnswer(t *testing.T) {
	iss := NewIssuer("test-secret", time.Minute)

	ch, err := iss.Issue(now)
	require.NoError(t, err)

	err = iss.Verify(ch.Token, ch.A+ch.B+1, now)
	assert.ErrorIs(t, err, ErrChallengeFailed)
}

func TestVerify_Expired(t *testing.T) {
	iss := NewIssuer("test-secret", time.Minute)

	ch, err := iss.Issue(now)
	require.NoError(t, err)

	err = iss.Verify(ch.Token, ch.A+ch.B, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrChallengeFailed)
}

func TestVerify_ForeignSecret(t *testing.T) {
	ch, err := NewIssuer("other-secret", time.Minute).Issue(now)
	require.NoError(t, err)

	err = NewIssuer("test-secret", time.Minute).Verify(ch.Token, ch.A+ch.B, now)
	assert.ErrorIs(t, err, ErrChallengeFailed)
}

func TestVerify_WrongType(t *testing.T) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["a"] = 1
	claims["b"] = 1
	claims["typ"] = "access"
	claims["exp"] = now.Add(time.Minute).Unix()

	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	err = NewIssuer("test-secret", time.Minute).Verify(signed, 2, now)
	assert.ErrorIs(t, err, ErrChallengeFailed)
}

func TestVerify_Garbage(t *testing.T) {
	iss := NewIssuer("test-secret", time.Minute)

	assert.ErrorIs(t, iss.Verify("", 2, now), ErrChallengeFailed)
	assert.ErrorIs(t, iss.Verify("not.a.token", 2, now), ErrChallengeFailed)
}
