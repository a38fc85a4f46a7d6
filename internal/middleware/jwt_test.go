package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/gymadmin/backoffice/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/alumnos", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	assert.NoError(t, handler(ctx))
	return rec, ctx
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "30123456", "Administrativo", 60)
	assert.NoError(t, err)

	rec, ctx := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30123456", ctx.Get("dni"))
	assert.Equal(t, "Administrativo", ctx.Get("rol"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("another-secret", 7, "30123456", "Alumno", 60)
	assert.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "30123456", "Alumno", -5)
	assert.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "30123456", "Administrativo", 60)
	assert.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+tok.Token,
		JWTAuth(testSecret), RequireRole("Administrativo"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsMember(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "30123456", "Alumno", 60)
	assert.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+tok.Token,
		JWTAuth(testSecret), RequireRole("Administrativo"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	rec, _ := runProtected(t, "", RequireRole("Administrativo"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
