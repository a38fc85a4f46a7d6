package repository

import (
	"context"
	"database/sql"

	"github.com/gymadmin/backoffice/internal/model"
)

// AccessRepo persists the door access log.
type AccessRepo struct{ DB *sql.DB }

func NewAccessRepo(db *sql.DB) *AccessRepo { return &AccessRepo{DB: db} }

// Insert appends one access attempt. Callers deliberately ignore the error:
// a failed log write must never flip a decision already made at the door.
func (r *AccessRepo) Insert(ctx context.Context, e *model.AccessEntry) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO accesos (nombre, dni, rol, metodo, resultado, autorizado)
		 VALUES (?,?,?,?,?,?)`,
		e.Name, e.DNI, e.Role, e.Method, e.Result, e.Authorized)
	return err
}

// ListRecent returns the newest n access attempts.
func (r *AccessRepo) ListRecent(ctx context.Context, n int) ([]model.AccessEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, nombre, dni, rol, metodo, resultado, autorizado, fecha
		 FROM accesos ORDER BY fecha DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AccessEntry{}
	for rows.Next() {
		var e model.AccessEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.DNI, &e.Role, &e.Method,
			&e.Result, &e.Authorized, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
