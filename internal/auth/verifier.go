package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the ID token payload.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed ID tokens. Issuing them belongs to the identity
// provider; Sign exists for tools and tests.
type Verifier struct {
	Key      []byte
	Issuer   string
	Audience string
}

func (v *Verifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	if len(v.Key) == 0 {
		return nil, &Error{Code: CodeInvalidToken, Err: errors.New("no signing key configured")}
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return v.Key, nil }, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &Error{Code: CodeTokenExpired, Err: err}
	case err != nil:
		return nil, &Error{Code: CodeInvalidToken, Err: err}
	}
	if c.Subject == "" {
		return nil, &Error{Code: CodeInvalidToken, Err: errors.New("missing subject")}
	}
	return &Identity{UID: c.Subject, Email: c.Email, Name: c.Name, Picture: c.Picture}, nil
}

func (v *Verifier) Sign(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    v.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.Audience != "" {
		c.Audience = jwt.ClaimStrings{v.Audience}
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.Key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}
