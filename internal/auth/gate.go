package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
)

var ErrMissingBearer = errors.New("missing or malformed bearer token")

// Verifier checks a raw bearer token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Gate rejects requests that do not carry a valid bearer token.
type Gate struct {
	verifier Verifier
}

func NewGate(verifier Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Require runs next only when the Authorization header holds a token the
// verifier accepts. The decoded claims are attached to the request context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.authenticate(r)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Str("path", r.URL.Path).Msg("authentication rejected")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication Failed!"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (g *Gate) authenticate(r *http.Request) (Claims, error) {
	token, err := BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Claims{}, err
	}
	return g.verifier.Verify(token)
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}

type ctxKeyClaims struct{}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims{}, claims)
}

func ClaimsFrom(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims{}).(Claims)
	return claims, ok && claims.UserID != ""
}
