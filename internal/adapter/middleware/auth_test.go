package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(userID, role string, exp time.Time) Claims {
	return Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
}

func authEcho() *echo.Echo {
	e := echo.New()
	g := e.Group("", Auth(secret))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"user": UserID(c), "admin": IsAdmin(c)})
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireAdmin())
	return e
}

func call(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	e := authEcho()
	tok := sign(t, jwt.SigningMethodHS256, secret, claimsFor(testUser, "user", time.Now().Add(time.Hour)))

	rec := call(e, "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"`+testUser+`","admin":false}`, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, call(e, "/admin", "Bearer "+tok).Code)
}

func TestAuth_AdminRole(t *testing.T) {
	e := authEcho()
	tok := sign(t, jwt.SigningMethodHS256, secret, claimsFor(testUser, "admin", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusNoContent, call(e, "/admin", "Bearer "+tok).Code)
}

func TestAuth_Rejects(t *testing.T) {
	e := authEcho()
	future := time.Now().Add(time.Hour)
	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not.a.token",
		"wrong secret":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(testUser, "user", future)),
		"expired":        "Bearer " + sign(t, jwt.SigningMethodHS256, secret, claimsFor(testUser, "user", time.Now().Add(-time.Minute))),
		"no expiry":      "Bearer " + sign(t, jwt.SigningMethodHS256, secret, Claims{UserID: testUser}),
		"bad subject":    "Bearer " + sign(t, jwt.SigningMethodHS256, secret, claimsFor("alice", "user", future)),
		"alg none":       "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claimsFor(testUser, "admin", future)),
	}
	for name, authz := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, call(e, "/me", authz).Code)
		})
	}
}
