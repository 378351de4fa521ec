// Package challenge issues and checks the arithmetic question that gates
// vote intake. The operands travel to the client inside an HS256 token, so
// the server keeps no state between issuing and verifying.
package challenge

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrChallengeFailed = errors.New("challenge failed")

const (
	typChallenge = "challenge"
	maxOperand   = 10
)

type Challenge struct {
	Token     string    `json:"token"`
	A         int       `json:"a"`
	B         int       `json:"b"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a new "a + b" question valid until now+ttl.
func (i *Issuer) Issue(now time.Time) (Challenge, error) {
	const op = "challenge.Issue"

	a := rand.IntN(maxOperand) + 1
	b := rand.IntN(maxOperand) + 1
	exp := now.Add(i.ttl)

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["a"] = a
	claims["b"] = b
	claims["typ"] = typChallenge
	claims["exp"] = exp.Unix()

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return Challenge{}, fmt.Errorf("%s: %w", op, err)
	}

	return Challenge{
		Token:     signed,
		A:         a,
		B:         b,
		ExpiresAt: time.Unix(exp.Unix(), 0).UTC(),
	}, nil
}

// Verify checks that answer is the sum of the operands signed into token and
// that the token has not expired at now. Every failure is ErrChallengeFailed.
func (i *Issuer) Verify(token string, answer int, now time.Time) error {
	const op = "challenge.Verify"

	if token == "" {
		return fmt.Errorf("%s: %w", op, ErrChallengeFailed)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrChallengeFailed, err)
	}

	if typ, _ := claims["typ"].(string); typ != typChallenge {
		return fmt.Errorf("%s: %w: wrong token type", op, ErrChallengeFailed)
	}

	a, okA := claims["a"].(float64)
	b, okB := claims["b"].(float64)
	if !okA || !okB {
		return fmt.Errorf("%s: %w: missing operands", op, ErrChallengeFailed)
	}

	if int(a)+int(b) != answer {
		return fmt.Errorf("%s: %w", op, ErrChallengeFailed)
	}

	return nil
}
