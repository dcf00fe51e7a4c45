package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"chatroom-backend/internal/models"
	"chatroom-backend/internal/repository"
)

type stubAccounts struct {
	known map[string]bool
	err   error
}

func (s stubAccounts) Lookup(ctx context.Context, username string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.known[username] {
		return nil, repository.ErrAccountNotFound
	}
	return &models.Account{Username: username}, nil
}

func newTestAuth(secret string) *JWTAuth {
	return NewJWTAuth(secret, 24*time.Hour, stubAccounts{known: map[string]bool{"student": true}})
}

func TestIssueAndVerify_OK(t *testing.T) {
	auth := newTestAuth("unit-test-secret")

	token, err := auth.Issue("student")
	require.NoError(t, err)

	username, err := auth.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "student", username)
}

func TestIssue_ExpiresAfterTTL(t *testing.T) {
	auth := newTestAuth("unit-test-secret")
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issuedAt }

	token, err := auth.Issue("student")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("unit-test-secret"), nil
	}, jwt.WithTimeFunc(auth.now))
	require.NoError(t, err)
	require.Equal(t, "student", claims.Subject)
	require.Equal(t, issuedAt.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestVerify_Expired(t *testing.T) {
	auth := newTestAuth("unit-test-secret")
	auth.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token, err := auth.Issue("student")
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_DifferentKey(t *testing.T) {
	other := newTestAuth("some-other-secret")
	token, err := other.Issue("student")
	require.NoError(t, err)

	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_DifferentKeyAndExpired(t *testing.T) {
	other := newTestAuth("some-other-secret")
	other.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := other.Issue("student")
	require.NoError(t, err)

	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	auth := newTestAuth("unit-test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := auth.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "student",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "student"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_UnknownSubject(t *testing.T) {
	auth := newTestAuth("unit-test-secret")

	ghost, err := auth.Issue("ghost")
	require.NoError(t, err)
	_, err = auth.Verify(context.Background(), ghost)
	require.ErrorIs(t, err, ErrUnknownSubject)

	empty, err := auth.Issue("")
	require.NoError(t, err)
	_, err = auth.Verify(context.Background(), empty)
	require.ErrorIs(t, err, ErrUnknownSubject)
}

func TestVerify_LookupFailure(t *testing.T) {
	lookupErr := errors.New("connection refused")
	auth := NewJWTAuth("unit-test-secret", time.Hour, stubAccounts{err: lookupErr})

	token, err := auth.Issue("student")
	require.NoError(t, err)

	_, err = auth.Verify(context.Background(), token)
	require.ErrorIs(t, err, lookupErr)
	require.NotErrorIs(t, err, ErrUnknownSubject)
}

func TestMiddleware(t *testing.T) {
	auth := newTestAuth("unit-test-secret")

	valid, err := auth.Issue("student")
	require.NoError(t, err)
	ghost, err := auth.Issue("ghost")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expired, err := auth.Issue("student")
	require.NoError(t, err)
	auth.now = time.Now

	forged, err := newTestAuth("some-other-secret").Issue("student")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Not authenticated"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired"},
		{"forged", "Bearer " + forged, http.StatusUnauthorized, "Invalid token"},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, "Invalid token"},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized, "Invalid user"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = GetUsername(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/chat", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			auth.Middleware(next).ServeHTTP(rr, req)

			require.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusOK {
				require.Equal(t, "student", gotUser)
				return
			}

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			require.Equal(t, tc.wantDetail, body.Detail)
			require.Empty(t, gotUser)
		})
	}
}

func TestGetUsername_Missing(t *testing.T) {
	require.Equal(t, "", GetUsername(context.Background()))
}

func TestVerify_NonStringSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)
	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), signed)
	require.ErrorIs(t, err, ErrUnknownSubject)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	_, err = newTestAuth("unit-test-secret").Verify(context.Background(), forged)
	require.ErrorIs(t, err, ErrInvalidToken)
}
