package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-travel/itinerary-api/internal/ports/out/clock"
)

var ErrInvalidToken = errors.New("invalid token")

// Config holds the advisor-auth settings. Tokens are HS256-signed JWTs whose
// subject is the advisor id.
type Config struct {
	Issuer   string
	Audience string
	Secret   []byte

	TokenTTL  time.Duration
	ClockSkew time.Duration
}

// Authenticator mints and verifies advisor tokens.
type Authenticator struct {
	cfg Config
	clk clock.Clock
}

func New(cfg Config, clk clock.Clock) *Authenticator {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 30 * time.Second
	}
	return &Authenticator{cfg: cfg, clk: clk}
}

// Mint issues a signed token for the advisor.
func (a *Authenticator) Mint(advisorID string) (string, error) {
	now := a.clk.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.cfg.Issuer,
		Audience:  jwt.ClaimStrings{a.cfg.Audience},
		Subject:   advisorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(a.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and claims and returns the advisor id.
func (a *Authenticator) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %v", t.Method.Alg())
			}
			return a.cfg.Secret, nil
		},
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.Audience),
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithTimeFunc(a.clk.Now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
