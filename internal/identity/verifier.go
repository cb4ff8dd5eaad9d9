// Package identity turns bearer tokens from the auth platform into caller
// identities.
package identity

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ProviderAnonymous = "anonymous"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Caller is the verified identity behind a request.
type Caller struct {
	ID          uuid.UUID
	Email       string
	Provider    string
	IsAnonymous bool
}

type AppMetadata struct {
	Provider  string   `json:"provider,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email,omitempty"`
	IsAnonymous *bool       `json:"is_anonymous,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// IsAnonymousCaller is true when the provider is anonymous, the token says
// so, any listed provider is anonymous, or there is neither an email nor a
// real provider.
func IsAnonymousCaller(email, provider string, providers []string, flag *bool) bool {
	if flag != nil && *flag {
		return true
	}
	if strings.EqualFold(provider, ProviderAnonymous) {
		return true
	}
	if slices.ContainsFunc(providers, func(p string) bool { return strings.EqualFold(p, ProviderAnonymous) }) {
		return true
	}
	if strings.TrimSpace(email) != "" {
		return false
	}
	hasProvider := provider != "" || slices.ContainsFunc(providers, func(p string) bool {
		return p != "" && !strings.EqualFold(p, ProviderAnonymous)
	})
	return !hasProvider
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier checks HS256 tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

func (v *Verifier) Verify(token string) (*Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", ErrInvalidToken, err)
	}
	provider := claims.AppMetadata.Provider
	return &Caller{
		ID:          id,
		Email:       claims.Email,
		Provider:    provider,
		IsAnonymous: IsAnonymousCaller(claims.Email, provider, claims.AppMetadata.Providers, claims.IsAnonymous),
	}, nil
}

// Sign issues a token for c; used by quizctl and tests.
func (v *Verifier) Sign(c Caller, claims jwt.RegisteredClaims) (string, error) {
	anon := c.IsAnonymous
	claims.Subject = c.ID.String()
	out := Claims{
		RegisteredClaims: claims,
		Email:            c.Email,
		IsAnonymous:      &anon,
		AppMetadata:      AppMetadata{Provider: c.Provider},
	}
	if c.Provider != "" {
		out.AppMetadata.Providers = []string{c.Provider}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, out).SignedString(v.secret)
}
