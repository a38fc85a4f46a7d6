package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gymadmin/backoffice/internal/model"
)

// ClassRepo persists group classes and their weekly occurrences.
type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

// ErrOccurrenceNotFound is returned by MoveOccurrence when no occurrence
// matches the exact (day, hour) pair being moved.
var ErrOccurrenceNotFound = errors.New("occurrence not found")

// List returns every class with its occurrence list populated.
func (r *ClassRepo) List(ctx context.Context) ([]model.Class, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, nombre, profesor, color, capacidad_max FROM clases ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	classes := []model.Class{}
	index := map[uint64]int{}
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Coach, &c.Color, &c.MaxCapacity); err != nil {
			return nil, err
		}
		c.Occurrences = []model.Occurrence{}
		index[c.ID] = len(classes)
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	occRows, err := r.DB.QueryContext(ctx,
		"SELECT id, clase_id, dia, horario FROM clase_horarios ORDER BY clase_id, id")
	if err != nil {
		return nil, err
	}
	defer occRows.Close()
	for occRows.Next() {
		var o model.Occurrence
		if err := occRows.Scan(&o.ID, &o.ClassID, &o.Day, &o.Hour); err != nil {
			return nil, err
		}
		if i, ok := index[o.ClassID]; ok {
			classes[i].Occurrences = append(classes[i].Occurrences, o)
		}
	}
	return classes, occRows.Err()
}

// GetByID fetches one class with its occurrences.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (model.Class, error) {
	var c model.Class
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, nombre, profesor, color, capacidad_max FROM clases WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Coach, &c.Color, &c.MaxCapacity)
	if err != nil {
		return model.Class{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, clase_id, dia, horario FROM clase_horarios WHERE clase_id=? ORDER BY id", id)
	if err != nil {
		return model.Class{}, err
	}
	defer rows.Close()
	c.Occurrences = []model.Occurrence{}
	for rows.Next() {
		var o model.Occurrence
		if err := rows.Scan(&o.ID, &o.ClassID, &o.Day, &o.Hour); err != nil {
			return model.Class{}, err
		}
		c.Occurrences = append(c.Occurrences, o)
	}
	return c, rows.Err()
}

// Create inserts a class and its occurrence list in one transaction.
func (r *ClassRepo) Create(ctx context.Context, c *model.Class) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO clases (nombre, profesor, color, capacidad_max) VALUES (?,?,?,?)",
		c.Name, c.Coach, c.Color, c.MaxCapacity)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, o := range c.Occurrences {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO clase_horarios (clase_id, dia, horario) VALUES (?,?,?)",
			id, o.Day, o.Hour); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Update rewrites a class and replaces its occurrence list wholesale.
func (r *ClassRepo) Update(ctx context.Context, c *model.Class) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"UPDATE clases SET nombre=?, profesor=?, color=?, capacidad_max=? WHERE id=?",
		c.Name, c.Coach, c.Color, c.MaxCapacity, c.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM clase_horarios WHERE clase_id=?", c.ID); err != nil {
		return err
	}
	for _, o := range c.Occurrences {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO clase_horarios (clase_id, dia, horario) VALUES (?,?,?)",
			c.ID, o.Day, o.Hour); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a class; occurrences and bookings cascade.
func (r *ClassRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM clases WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MoveOccurrence relocates one weekly occurrence to a new (day, hour) pair.
// The old pair must match exactly, hour included (18.5 = 18:30).
func (r *ClassRepo) MoveOccurrence(ctx context.Context, classID uint64, oldDay string, oldHour float64, newDay string, newHour float64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clase_horarios SET dia=?, horario=? WHERE clase_id=? AND dia=? AND horario=?",
		newDay, newHour, classID, oldDay, oldHour)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOccurrenceNotFound
	}
	return nil
}
