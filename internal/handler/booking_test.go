package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/gymadmin/backoffice/internal/repository"
)

func expectBookingChecks(mock sqlmock.Sqlmock, capacity, dup, used int) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacidad_max FROM clases WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_max"}).AddRow(capacity))
	mock.ExpectQuery("SELECT p.clases_mensuales FROM usuarios u").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"clases_mensuales"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(dup))
	if dup == 0 {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=?")).
			WithArgs(uint64(3), "Lunes", 18.5).
			WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(used))
	}
}

const bookingBody = `{"usuario_id":7,"clase_id":3,"dia":"Lunes","horario":18.5}`

func TestCreateBooking(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	expectBookingChecks(mock, 10, 0, 4)
	mock.ExpectExec("INSERT INTO reservas").
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectCommit()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/reservas", bookingBody)
	err := h.Create(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":15`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingNoCapacity(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	expectBookingChecks(mock, 5, 0, 5)
	mock.ExpectRollback()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/reservas", bookingBody)
	err := h.Create(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no cupos disponibles")
}

func TestCreateBookingDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	expectBookingChecks(mock, 10, 1, 0)
	mock.ExpectRollback()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/reservas", bookingBody)
	err := h.Create(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ya tenés una reserva para esta clase")
}

func TestCreateBookingClassMissing(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacidad_max FROM clases WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_max"}))
	mock.ExpectRollback()

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/reservas", bookingBody)
	err := h.Create(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "clase no encontrada")
}

func TestCreateBookingMissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/reservas", `{"usuario_id":0}`)
	err := h.Create(e.NewContext(req, rec))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBookingMissing(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBookingHandler(repository.NewBookingRepo(db))

	mock.ExpectExec("DELETE FROM reservas WHERE id=?").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req, rec := jsonRequest(http.MethodDelete, "/api/reservas/99", "")
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("99")
	err := h.Delete(ctx)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
