package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/gymadmin/backoffice/internal/repository"
	"github.com/gymadmin/backoffice/internal/utils"
)

func newAccessHandler(t *testing.T) (*AccessHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewAccessHandler(testConfig(), repository.NewUserRepo(db), repository.NewAccessRepo(db)), mock
}

func expectAccessLog(mock sqlmock.Sqlmock) {
	mock.ExpectExec("INSERT INTO accesos").
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func validateBody(qrData string) string {
	return fmt.Sprintf(`{"qr_data":%q}`, qrData)
}

func TestValidateForgedQR(t *testing.T) {
	h, mock := newAccessHandler(t)
	expectAccessLog(mock)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/acceso/validar", validateBody("30123456:deadbeef"))
	err := h.Validate(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code, "door decisions always answer 200")
	assert.Contains(t, rec.Body.String(), "DENEGADO")
	assert.Contains(t, rec.Body.String(), "Código QR inválido o adulterado")
	assert.Contains(t, rec.Body.String(), `"color":"rojo"`)
}

func TestValidateUnknownDNI(t *testing.T) {
	h, mock := newAccessHandler(t)

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("99999999").
		WillReturnRows(sqlmock.NewRows(userTestColumns))
	expectAccessLog(mock)

	payload := utils.SignQR(testConfig().QRSecret, "99999999")
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/acceso/validar", validateBody(payload))
	err := h.Validate(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No registrado")
}

func TestValidateCurrentMember(t *testing.T) {
	h, mock := newAccessHandler(t)

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow("$2a$10$hash", time.Now().UTC().AddDate(0, 1, 0)))
	expectAccessLog(mock)

	payload := utils.SignQR(testConfig().QRSecret, "30123456")
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/acceso/validar", validateBody(payload))
	err := h.Validate(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTORIZADO")
	assert.Contains(t, rec.Body.String(), `"color":"verde"`)
	assert.Contains(t, rec.Body.String(), "Juan Perez")
}

func TestValidateExpiredMember(t *testing.T) {
	h, mock := newAccessHandler(t)

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow("$2a$10$hash", time.Now().UTC().AddDate(0, -1, 0)))
	expectAccessLog(mock)

	payload := utils.SignQR(testConfig().QRSecret, "30123456")
	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/acceso/validar", validateBody(payload))
	err := h.Validate(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DENEGADO")
	assert.Contains(t, rec.Body.String(), "Membresía vencida")
}

func TestValidateEmptyPayload(t *testing.T) {
	h, _ := newAccessHandler(t)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/acceso/validar", `{"qr_data":""}`)
	err := h.Validate(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQRForUnknownUser(t *testing.T) {
	h, mock := newAccessHandler(t)

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("99999999").
		WillReturnRows(sqlmock.NewRows(userTestColumns))

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/api/acceso/qr/99999999", "")
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("dni")
	ctx.SetParamValues("99999999")
	err := h.QRFor(ctx)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQRForKnownUser(t *testing.T) {
	h, mock := newAccessHandler(t)

	mock.ExpectQuery("FROM usuarios u").
		WithArgs("30123456").
		WillReturnRows(memberRow("$2a$10$hash", time.Now()))

	e := echo.New()
	req, rec := jsonRequest(http.MethodGet, "/api/acceso/qr/30123456", "")
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("dni")
	ctx.SetParamValues("30123456")
	err := h.QRFor(ctx)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), utils.SignQR(testConfig().QRSecret, "30123456"))
}
