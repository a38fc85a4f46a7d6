package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymadmin/backoffice/internal/config"
	"github.com/gymadmin/backoffice/internal/repository"
	"github.com/gymadmin/backoffice/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		QRSecret:     "qr-secret",
		AccessTTLMin: 60,
		BcryptCost:   bcrypt.MinCost,
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// userColumns mirrors the joined SELECT the user repository issues.
var userTestColumns = []string{
	"id", "dni", "password_hash", "nombre_completo", "email",
	"perfil_id", "perfil", "plan_id", "plan",
	"estado_cuenta", "fecha_ultima_renovacion", "fecha_vencimiento",
	"clases_restantes", "especialidad", "peso", "altura", "imc",
	"fecha_nacimiento", "apto_medico", "fecha_apto_medico", "fecha_creacion",
}

func memberRow(passwordHash string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userTestColumns).AddRow(
		7, "30123456", passwordHash, "Juan Perez", nil,
		1, "Alumno", 2, "Full",
		"Al día", nil, expiresAt,
		nil, nil, nil, nil, nil,
		nil, true, nil, time.Now(),
	)
}

func TestLoginSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	hash, _ := utils.HashPassword("secreto123", bcrypt.MinCost)
	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow(hash, time.Now().AddDate(0, 1, 0)))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/login", `{"dni":"30123456","password":"secreto123"}`)
	err := h.Login(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
	assert.Contains(t, rec.Body.String(), `"estado_cuenta":"Al día"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	hash, _ := utils.HashPassword("secreto123", bcrypt.MinCost)
	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow(hash, time.Now()))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/login", `{"dni":"30123456","password":"wrong"}`)
	err := h.Login(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "credenciales inválidas")
}

func TestLoginUnknownDNI(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("99999999").
		WillReturnRows(sqlmock.NewRows(userTestColumns))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/login", `{"dni":"99999999","password":"x"}`)
	err := h.Login(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginLegacyPlaintextRehashes(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	// Credential predating the bcrypt migration: stored as plaintext.
	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow("secreto123", time.Now().AddDate(0, 1, 0)))
	mock.ExpectExec("UPDATE usuarios SET password_hash=?").
		WithArgs(sqlmock.AnyArg(), "30123456").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/login", `{"dni":"30123456","password":"secreto123"}`)
	err := h.Login(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "legacy login must persist a bcrypt hash")
}

func TestLoginMissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/login", `{"dni":"","password":""}`)
	err := h.Login(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPasswordUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))

	mock.ExpectExec("UPDATE usuarios SET password_hash=?").
		WithArgs(sqlmock.AnyArg(), "99999999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPut, "/api/usuarios/reset-password", `{"dni":"99999999","nueva_password":"nuevo"}`)
	err := h.ResetPassword(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
