package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	PurposeAuth  = "auth"
	PurposeReset = "reset"
)

var ErrTokenInvalid = errors.New("token is invalid or expired")

// Claims is what Lumo puts into its tokens. The subject is always a user ID.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"type"`
	jwt.RegisteredClaims
}

// Signer mints and checks signed tokens.
type Signer interface {
	Sign(c Claims, ttl time.Duration) (string, error)
	Verify(token, purpose string) (*Claims, error)
}

type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the signer's time source. Tests use it to move past a
// token's expiry.
func (s *JWTSigner) WithClock(now func() time.Time) *JWTSigner {
	return &JWTSigner{secret: s.secret, now: now}
}

// Sign issues an HS256 token valid for ttl. Every token gets a random ID so
// two tokens minted in the same second for the same user still differ.
func (s *JWTSigner) Sign(c Claims, ttl time.Duration) (string, error) {
	if c.UserID == "" {
		return "", errors.New("no user ID provided")
	}

	if c.Purpose == "" {
		return "", errors.New("no token purpose provided")
	}

	jti, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id, %w", err)
	}

	now := s.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		Subject:   c.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify checks the signature, the expiry and the purpose of token. All
// failures collapse into ErrTokenInvalid.
func (s *JWTSigner) Verify(token, purpose string) (*Claims, error) {
	var c Claims

	t, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		return nil, ErrTokenInvalid
	}

	if c.Purpose != purpose || c.UserID == "" || c.UserID != c.Subject {
		return nil, ErrTokenInvalid
	}

	return &c, nil
}
