package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gymadmin/backoffice/internal/model"
)

// BookingRepo persists class reservations and enforces the booking rules.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Booking failure sentinels, each mapped to its own message by the handler.
var (
	ErrClassNotFound    = errors.New("class not found")
	ErrQuotaExceeded    = errors.New("monthly quota exceeded")
	ErrDuplicateBooking = errors.New("duplicate booking")
	ErrNoCapacity       = errors.New("no capacity left")
)

// Occupancy is the used/max pair for one occurrence of a class.
type Occupancy struct {
	Used int `json:"ocupados"`
	Max  int `json:"capacidad"`
}

// CountForOccurrence returns current occupancy for (class, day, hour).
func (r *BookingRepo) CountForOccurrence(ctx context.Context, classID uint64, day string, hour float64) (Occupancy, error) {
	var occ Occupancy
	err := r.DB.QueryRowContext(ctx,
		"SELECT capacidad_max FROM clases WHERE id=?", classID).Scan(&occ.Max)
	if err != nil {
		if err == sql.ErrNoRows {
			return occ, ErrClassNotFound
		}
		return occ, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?",
		classID, day, hour).Scan(&occ.Used)
	return occ, err
}

// Book inserts a reservation for today after running the checks in one
// transaction. The class row is locked first, so ErrClassNotFound wins
// over every other condition and the remaining checks serialize on the
// lock; after that the order is monthly quota, duplicate, capacity, and
// the first failing check decides the error when several hold at once.
// Two concurrent requests for the last spot queue on the class lock
// instead of both passing the capacity check, and the unique index on
// (usuario_id, clase_id, dia, horario) backstops the duplicate check.
func (r *BookingRepo) Book(ctx context.Context, userID, classID uint64, day string, hour float64, today time.Time) (model.Booking, error) {
	var b model.Booking
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return b, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the class row first; every booking for this class queues here.
	var capacity int
	err = tx.QueryRowContext(ctx,
		"SELECT capacidad_max FROM clases WHERE id=? FOR UPDATE", classID).Scan(&capacity)
	if err != nil {
		if err == sql.ErrNoRows {
			return b, ErrClassNotFound
		}
		return b, err
	}

	// Monthly quota from the member's plan; 999 means unlimited.
	var quota sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT p.clases_mensuales FROM usuarios u
		 LEFT JOIN planes p ON p.id = u.plan_id WHERE u.id=?`, userID).Scan(&quota)
	if err != nil {
		if err == sql.ErrNoRows {
			return b, ErrNotFound
		}
		return b, err
	}
	if quota.Valid && int(quota.Int64) < model.UnlimitedQuota {
		var used int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservas
			 WHERE usuario_id=? AND MONTH(fecha)=? AND YEAR(fecha)=?`,
			userID, int(today.Month()), today.Year()).Scan(&used)
		if err != nil {
			return b, err
		}
		if used >= int(quota.Int64) {
			return b, ErrQuotaExceeded
		}
	}

	// Duplicate check. Note: no fecha filter, matching how the booking rules
	// currently work: a member holds at most one standing reservation per
	// weekly occurrence.
	var dup int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservas WHERE usuario_id=? AND clase_id=? AND dia=? AND horario=?",
		userID, classID, day, hour).Scan(&dup)
	if err != nil {
		return b, err
	}
	if dup > 0 {
		return b, ErrDuplicateBooking
	}

	var used int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservas WHERE clase_id=? AND dia=? AND horario=?",
		classID, day, hour).Scan(&used)
	if err != nil {
		return b, err
	}
	if used >= capacity {
		return b, ErrNoCapacity
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO reservas (usuario_id, clase_id, dia, horario, fecha) VALUES (?,?,?,?,?)",
		userID, classID, day, hour, today.Format("2006-01-02"))
	if err != nil {
		if duplicateKey(err) {
			return b, ErrDuplicateBooking
		}
		return b, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return b, err
	}
	if err := tx.Commit(); err != nil {
		return b, err
	}
	committed = true

	b = model.Booking{
		ID:      uint64(id),
		UserID:  userID,
		ClassID: classID,
		Day:     day,
		Hour:    hour,
		Date:    today,
	}
	return b, nil
}

// BookingRow is a reservation joined with member and class names for the
// schedule grid.
type BookingRow struct {
	ID        uint64  `json:"id"`
	UserID    uint64  `json:"usuario_id"`
	UserName  string  `json:"nombre_usuario"`
	ClassID   uint64  `json:"clase_id"`
	ClassName string  `json:"nombre_clase"`
	Day       string  `json:"dia"`
	Hour      float64 `json:"horario"`
	Date      string  `json:"fecha"`
}

// List returns reservations, optionally filtered to one occurrence.
func (r *BookingRepo) List(ctx context.Context, classID uint64, day string, hour float64, filtered bool) ([]BookingRow, error) {
	q := `SELECT r.id, r.usuario_id, u.nombre_completo, r.clase_id, c.nombre,
		r.dia, r.horario, r.fecha
		FROM reservas r
		JOIN usuarios u ON u.id = r.usuario_id
		JOIN clases c ON c.id = r.clase_id`
	args := []any{}
	if filtered {
		q += " WHERE r.clase_id=? AND r.dia=? AND r.horario=?"
		args = append(args, classID, day, hour)
	}
	q += " ORDER BY r.fecha DESC, r.id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BookingRow{}
	for rows.Next() {
		var row BookingRow
		var fecha time.Time
		if err := rows.Scan(&row.ID, &row.UserID, &row.UserName, &row.ClassID,
			&row.ClassName, &row.Day, &row.Hour, &fecha); err != nil {
			return nil, err
		}
		row.Date = fecha.Format("2006-01-02")
		out = append(out, row)
	}
	return out, rows.Err()
}

// Delete cancels a reservation.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reservas WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
