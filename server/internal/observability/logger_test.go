package observability

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	e := echo.New()

	var seen *slog.Logger
	handler := RequestLogger()(func(c echo.Context) error {
		seen = LoggerFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.NotNil(t, seen)
	// The request-scoped logger is distinct from the process default
	assert.NotEqual(t, slog.Default(), seen)
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	assert.Equal(t, slog.Default(), LoggerFromContext(context.Background()))
}
