package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-32-characters-long"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestFromRequest(t *testing.T) {
	r := NewResolver(testSecret)
	valid := signToken(t, testSecret, "user-42", time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		explicit string
		bearer   string
		cookie   string
		want     string
	}{
		{"explicit id wins", "body-user", valid, "", "body-user"},
		{"bearer token subject", "", valid, "", "user-42"},
		{"cookie token subject", "", "", valid, "user-42"},
		{"no credential", "", "", "", Anonymous},
		{"garbage token degrades", "", "not-a-token", "", Anonymous},
		{"whitespace explicit ignored", "   ", valid, "", "user-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/ask", nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if got := r.FromRequest(req, tt.explicit); got != tt.want {
				t.Errorf("FromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	r := NewResolver(testSecret)

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"valid token", signToken(t, testSecret, "user-1", time.Now().Add(time.Hour)), "user-1", false},
		{"expired token", signToken(t, testSecret, "user-1", time.Now().Add(-time.Hour)), "", true},
		{"wrong secret", signToken(t, "another-secret-also-32-characters!!", "user-1", time.Now().Add(time.Hour)), "", true},
		{"empty subject", signToken(t, testSecret, "", time.Now().Add(time.Hour)), "", true},
		{"malformed", "abc.def.ghi", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Subject(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Subject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubjectNoSecret(t *testing.T) {
	r := NewResolver("")
	if _, err := r.Subject("anything"); err == nil {
		t.Error("expected error with no secret configured")
	}
}
