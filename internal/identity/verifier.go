// Package identity verifies ID tokens issued by the identity provider and
// turns them into application identities.
package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meatupclub/meatup/internal/application"
)

// ErrNoKeys is returned when neither a shared secret nor a public key is configured.
var ErrNoKeys = errors.New("identity: no verification key configured")

// Config describes how tokens are checked. At least one of HMACSecret and
// PublicKeyPEM is required. Empty Issuer or Audience skips that check.
type Config struct {
	Issuer       string
	Audience     string
	HMACSecret   string
	PublicKeyPEM []byte
	Leeway       time.Duration
	Now          func() time.Time
}

// Claims are the provider claims read from an ID token.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Verifier checks signatures, expiry, issuer and audience of ID tokens.
type Verifier struct {
	secret []byte
	rsaKey *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifier builds a Verifier from cfg.
func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{}
	var methods []string

	if secret := strings.TrimSpace(cfg.HMACSecret); secret != "" {
		v.secret = []byte(secret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if len(cfg.PublicKeyPEM) > 0 {
		key, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("identity: parse public key: %w", err)
		}
		v.rsaKey = key
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, ErrNoKeys
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify implements application.IdentityVerifier. Every rejection wraps
// application.ErrUnauthorized.
func (v *Verifier) Verify(_ context.Context, token string) (application.Identity, error) {
	if v == nil || v.parser == nil {
		return application.Identity{}, ErrNoKeys
	}

	var claims Claims
	if _, err := v.parser.ParseWithClaims(strings.TrimSpace(token), &claims, v.key); err != nil {
		return application.Identity{}, fmt.Errorf("%w: %v", application.ErrUnauthorized, err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return application.Identity{}, fmt.Errorf("%w: token has no email claim", application.ErrUnauthorized)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return application.Identity{}, fmt.Errorf("%w: email is not verified", application.ErrUnauthorized)
	}

	return application.Identity{
		Subject: claims.Subject,
		Email:   email,
		Name:    strings.TrimSpace(claims.Name),
		Picture: strings.TrimSpace(claims.Picture),
	}, nil
}

func (v *Verifier) key(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	case *jwt.SigningMethodRSA:
		if v.rsaKey != nil {
			return v.rsaKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
}
