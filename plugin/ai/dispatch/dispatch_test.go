package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Action  string          `json:"action"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "summarizeDocument", req.Action)
		assert.JSONEq(t, `{"text":"The quick brown fox"}`, string(req.Payload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"A fox runs."}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})

	data, err := c.Do(context.Background(), "summarizeDocument", map[string]string{"text": "The quick brown fox"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"A fox runs."}`, string(data))
}

func TestClient_ErrorPropagatedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})

	data, err := c.Do(context.Background(), "tutorQuestion", nil)
	assert.Nil(t, data)
	assert.EqualError(t, err, "model overloaded")
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})

	_, err := c.Do(context.Background(), "tutorQuestion", nil)
	assert.EqualError(t, err, "ai proxy returned status 502")
}

func TestClient_BearerToken(t *testing.T) {
	const secret = "shared-secret"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		require.True(t, len(auth) > len("Bearer "), "missing bearer token")

		token, err := jwt.Parse(auth[len("Bearer "):], func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(TokenIssuer))
		require.NoError(t, err)
		require.True(t, token.Valid)

		exp, err := token.Claims.GetExpirationTime()
		require.NoError(t, err)
		assert.True(t, exp.After(time.Now()), "token must not be pre-expired")
		assert.True(t, exp.Before(time.Now().Add(2*time.Minute)), "token must be short-lived")

		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Secret: secret})

	_, err := c.Do(context.Background(), "chatCompletion", nil)
	require.NoError(t, err)
}

func TestClient_NoTokenWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL})

	_, err := c.Do(context.Background(), "chatCompletion", nil)
	require.NoError(t, err)
}

func TestClient_UnreachableProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{URL: srv.URL})

	_, err := c.Do(context.Background(), "summarizeDocument", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach AI proxy")
}
