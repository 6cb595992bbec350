// Package identity verifies session tokens issued by the external
// identity provider and resolves them to a Principal. The portal never
// mints credentials itself; it only checks signatures on tokens the
// provider handed to the browser.
package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"

	"github.com/carelink/clinic-portal-api/internal/config"
	"github.com/carelink/clinic-portal-api/internal/model"
)

// Verifier resolves a raw session token to the principal it was
// issued for.
type Verifier interface {
	Verify(token string) (*model.Principal, error)
}

type sessionClaims struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

type jwtVerifier struct {
	issuer   string
	audience string
	secret   []byte
	cache    *cache.Cache
}

// NewVerifier builds a Verifier for HS256 tokens from the given
// identity configuration. Verified principals are cached by raw token
// for the configured TTL so hot paths skip signature checks.
func NewVerifier(cfg config.IdentityConfig) Verifier {
	return &jwtVerifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		secret:   []byte(cfg.Secret),
		cache:    cache.New(cfg.PrincipalTTL, 2*cfg.PrincipalTTL),
	}
}

func (v *jwtVerifier) Verify(tokenString string) (*model.Principal, error) {
	if cached, found := v.cache.Get(tokenString); found {
		return cached.(*model.Principal), nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("session token missing subject")
	}

	principal := &model.Principal{
		AuthID:     claims.Subject,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
	}

	v.cache.SetDefault(tokenString, principal)
	return principal, nil
}
