package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatroom-backend/internal/models"
	"chatroom-backend/internal/repository"
)

type contextKey string

const UsernameKey contextKey = "username"

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrUnknownSubject = errors.New("unknown token subject")
)

// AccountLookup resolves a username to its account.
// Implementations return repository.ErrAccountNotFound for unknown users.
type AccountLookup interface {
	Lookup(ctx context.Context, username string) (*models.Account, error)
}

// JWTAuth issues and verifies HS256 bearer tokens bound to a username.
// Tokens are not stored; expiry is the only way one stops working.
type JWTAuth struct {
	Secret   []byte
	ttl      time.Duration
	accounts AccountLookup
	now      func() time.Time
}

func NewJWTAuth(secret string, ttl time.Duration, accounts AccountLookup) *JWTAuth {
	return &JWTAuth{
		Secret:   []byte(secret),
		ttl:      ttl,
		accounts: accounts,
		now:      time.Now,
	}
}

// Issue creates a token for username that expires after the configured TTL.
func (j *JWTAuth) Issue(username string) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and subject, and returns the username.
// The signature is checked first, so a forged token is ErrInvalidToken even when expired.
// Claims are decoded loosely so a signed token with a non-string sub is ErrUnknownSubject.
func (j *JWTAuth) Verify(ctx context.Context, tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrUnknownSubject
	}
	if _, err := j.accounts.Lookup(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return "", ErrUnknownSubject
		}
		return "", fmt.Errorf("failed to look up token subject: %w", err)
	}

	return subject, nil
}

// Middleware validates the bearer token and attaches the username to context
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		username, err := j.Verify(r.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, ErrInvalidToken):
				writeError(w, http.StatusUnauthorized, "Invalid token")
			case errors.Is(err, ErrUnknownSubject):
				writeError(w, http.StatusUnauthorized, "Invalid user")
			default:
				log.Printf("token verification failed: %v", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsername extracts the authenticated username from request context
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// bearerToken accepts "Bearer <token>" with any casing of the scheme.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Detail: detail})
}
