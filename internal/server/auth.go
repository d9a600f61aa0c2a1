package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Auth errors returned by the token guard.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// TokenGuard validates bearer tokens against the bcrypt hash stored in the
// server configuration. The plain token never touches disk; only the hash
// does.
type TokenGuard struct {
	hash []byte
}

// NewTokenGuard wraps a stored bcrypt hash. An empty hash returns a nil
// guard, which allows every request.
func NewTokenGuard(hash string) *TokenGuard {
	if hash == "" {
		return nil
	}
	return &TokenGuard{hash: []byte(hash)}
}

// GenerateToken creates a random bearer token and its bcrypt hash. The hash
// goes into the config file; the token is shown to the operator exactly once.
func GenerateToken() (token string, hash string, err error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)

	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return token, string(hashed), nil
}

// Allow checks the Authorization header of r.
func (g *TokenGuard) Allow(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ErrMissingToken
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrInvalidToken
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return ErrMissingToken
	}

	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// Require wraps next with a bearer token check. A nil guard passes requests
// through untouched.
func (g *TokenGuard) Require(next http.HandlerFunc) http.HandlerFunc {
	if g == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.Allow(r); err != nil {
			writeAuthError(w, err)
			return
		}
		next(w, r)
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + err.Error() + `"}`))
}
