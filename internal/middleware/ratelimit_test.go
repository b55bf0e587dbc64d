package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCurrentUserIDFallsBackToClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	// Unauthenticated request: no context keys, no token.
	assert.Equal(t, "anon", currentUserID(c))

	// A parsed JWT without the decoded user_id key (the limiter runs
	// before JWTAuth) still yields a stable per-user key via the
	// claims fallback.
	c.Set("user", &jwt.Token{Claims: jwt.MapClaims{"sub": "42"}})
	assert.Equal(t, "42", currentUserID(c))

	// The decoded user_id key wins when present.
	c.Set("user_id", "7")
	assert.Equal(t, "7", currentUserID(c))
}
