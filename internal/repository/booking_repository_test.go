package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var bookingDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newBookingMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func expectClassLock(mock sqlmock.Sqlmock, capacity int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacidad_max FROM clases WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_max"}).AddRow(capacity))
}

func expectQuota(mock sqlmock.Sqlmock, quota any) {
	mock.ExpectQuery("SELECT p.clases_mensuales FROM usuarios u").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"clases_mensuales"}).AddRow(quota))
}

func TestBookSuccess(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 10)
	expectQuota(mock, nil) // member without plan, no quota cap
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservas (usuario_id, clase_id, dia, horario, fecha) VALUES (?,?,?,?,?)")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5, "2025-03-10").
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectCommit()

	b, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.NoError(t, err)
	assert.Equal(t, uint64(15), b.ID)
	assert.Equal(t, "Lunes", b.Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookClassNotFound(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacidad_max FROM clases WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_max"}))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookQuotaExceeded(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 10)
	expectQuota(mock, 8)
	mock.ExpectQuery("MONTH\\(fecha\\)").
		WithArgs(uint64(7), 3, 2025).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(8))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookUnlimitedPlanSkipsQuotaCheck(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 10)
	expectQuota(mock, 999) // unlimited sentinel, no monthly count query
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectExec("INSERT INTO reservas").
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5, "2025-03-10").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookDuplicate(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 10)
	expectQuota(mock, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookNoCapacity(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 5)
	expectQuota(mock, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(5))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookUniqueIndexBackstop(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectBegin()
	expectClassLock(mock, 10)
	expectQuota(mock, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	// A racing insert slipped between our check and the write; the unique
	// index rejects the second row.
	mock.ExpectExec("INSERT INTO reservas").
		WithArgs(uint64(7), uint64(3), "Lunes", 18.5, "2025-03-10").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7-3-Lunes-18.5' for key 'uq_reserva'"))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 7, 3, "Lunes", 18.5, bookingDay)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountForOccurrence(t *testing.T) {
	repo, mock := newBookingMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacidad_max FROM clases WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacidad_max"}).AddRow(20))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?")).
		WithArgs(uint64(3), "Lunes", 18.5).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(12))

	occ, err := repo.CountForOccurrence(context.Background(), 3, "Lunes", 18.5)
	assert.NoError(t, err)
	assert.Equal(t, Occupancy{Used: 12, Max: 20}, occ)
	assert.NoError(t, mock.ExpectationsWereMet())
}
