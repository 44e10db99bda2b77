// Package identity derives the per-user identity used for rate limiting.
// Session issuance and login flows live outside this service; a request may
// carry a signed session token, an explicit user id, or nothing.
package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Anonymous is the identity of requests carrying no usable credential.
const Anonymous = "anonymous"

// CookieName is the session cookie set by the auth collaborator.
const CookieName = "podsearch-auth-token"

// Resolver extracts a stable rate-limit identity from a request.
type Resolver struct {
	secret []byte
}

func NewResolver(jwtSecret string) *Resolver {
	return &Resolver{secret: []byte(jwtSecret)}
}

// Subject validates tokenString and returns its subject claim.
func (r *Resolver) Subject(tokenString string) (string, error) {
	if len(r.secret) == 0 {
		return "", fmt.Errorf("no session secret configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.Subject, nil
}

// FromRequest resolves the request's identity: an explicit user id wins,
// then the subject of a valid session token, then Anonymous. An invalid
// token degrades to Anonymous instead of rejecting the request; identity
// only scopes quota here.
func (r *Resolver) FromRequest(req *http.Request, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}

	var tokenString string
	if h := req.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := req.Cookie(CookieName); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		return Anonymous
	}

	subject, err := r.Subject(tokenString)
	if err != nil {
		return Anonymous
	}
	return subject
}
