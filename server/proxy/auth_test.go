package proxy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/plugin/ai/dispatch"
)

func mintToken(t *testing.T, secret, issuer string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"iat": now.Add(-ttl).Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedPost(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(`{"action":"chatCompletion","payload":{"messages":[{"role":"user","content":"hi"}]}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestVerifyToken(t *testing.T) {
	const secret = "proxy-secret"
	e := newTestEcho(&fakeProvider{}, secret)

	t.Run("valid token", func(t *testing.T) {
		rec := authedPost(e, mintToken(t, secret, dispatch.TokenIssuer, time.Minute))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := authedPost(e, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())
	})

	t.Run("wrong secret", func(t *testing.T) {
		rec := authedPost(e, mintToken(t, "other-secret", dispatch.TokenIssuer, time.Minute))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid bearer token"}`, rec.Body.String())
	})

	t.Run("wrong issuer", func(t *testing.T) {
		rec := authedPost(e, mintToken(t, secret, "someone-else", time.Minute))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		rec := authedPost(e, mintToken(t, secret, dispatch.TokenIssuer, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestVerifyToken_NoSecretConfigured(t *testing.T) {
	e := newTestEcho(&fakeProvider{}, "")

	rec := authedPost(e, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
