package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/gymadmin/backoffice/internal/model"
)

// RoutineRepo persists workout routines and the exercise library.
type RoutineRepo struct{ DB *sql.DB }

func NewRoutineRepo(db *sql.DB) *RoutineRepo { return &RoutineRepo{DB: db} }

// ----- exercise library -----

// ListMuscleGroups returns the muscle group catalog.
func (r *RoutineRepo) ListMuscleGroups(ctx context.Context) ([]model.MuscleGroup, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, nombre FROM grupos_musculares ORDER BY nombre")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MuscleGroup{}
	for rows.Next() {
		var g model.MuscleGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateMuscleGroup inserts a muscle group; duplicate names conflict.
func (r *RoutineRepo) CreateMuscleGroup(ctx context.Context, name string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO grupos_musculares (nombre) VALUES (?)", name)
	if err != nil {
		if duplicateKey(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListExercises returns the exercise library with muscle groups joined in.
func (r *RoutineRepo) ListExercises(ctx context.Context) ([]model.Exercise, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT e.id, e.nombre, e.grupo_muscular_id, g.nombre
		 FROM ejercicios e LEFT JOIN grupos_musculares g ON g.id = e.grupo_muscular_id
		 ORDER BY e.nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Exercise{}
	for rows.Next() {
		var e model.Exercise
		var gid sql.NullInt64
		var gname sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &gid, &gname); err != nil {
			return nil, err
		}
		e.MuscleGroupID = nullID(gid)
		e.MuscleGroupName = nullStr(gname)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateExercise inserts a library exercise.
func (r *RoutineRepo) CreateExercise(ctx context.Context, e *model.Exercise) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ejercicios (nombre, grupo_muscular_id) VALUES (?,?)",
		e.Name, e.MuscleGroupID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ----- routine plans -----

// CreatePlan deactivates every routine the member already has and inserts
// the new plan with its full day/exercise/set tree, all in one transaction.
// Entries referencing an unknown library exercise are skipped and logged
// instead of aborting the whole plan; coaches build routines from stale
// copies of the library all the time.
func (r *RoutineRepo) CreatePlan(ctx context.Context, p *model.RoutinePlan) (uint64, error) {
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

	if _, err := tx.ExecContext(ctx,
		"UPDATE rutina_planes SET activo=0 WHERE usuario_id=?", p.UserID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO rutina_planes (usuario_id, nombre, descripcion, objetivo, fecha_vencimiento, activo)
		 VALUES (?,?,?,?,?,1)`,
		p.UserID, p.Name, p.Description, p.Goal, p.ExpiresAt)
	if err != nil {
		return 0, err
	}
	planID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for di, day := range p.Days {
		dres, err := tx.ExecContext(ctx,
			"INSERT INTO rutina_dias (plan_id, nombre, orden) VALUES (?,?,?)",
			planID, day.Name, di)
		if err != nil {
			return 0, err
		}
		dayID, err := dres.LastInsertId()
		if err != nil {
			return 0, err
		}
		for ei, ex := range day.Exercises {
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM ejercicios WHERE id=?", ex.ExerciseID).Scan(&exists); err != nil {
				return 0, err
			}
			if exists == 0 {
				log.Printf("rutina: plan %d day %q skips unknown exercise %d", planID, day.Name, ex.ExerciseID)
				continue
			}
			eres, err := tx.ExecContext(ctx,
				"INSERT INTO rutina_ejercicios (dia_id, ejercicio_id, orden) VALUES (?,?,?)",
				dayID, ex.ExerciseID, ei)
			if err != nil {
				return 0, err
			}
			exID, err := eres.LastInsertId()
			if err != nil {
				return 0, err
			}
			for _, s := range ex.Sets {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO rutina_series (rutina_ejercicio_id, numero, repeticiones, peso, descanso)
					 VALUES (?,?,?,?,?)`,
					exID, s.Number, s.Reps, s.Weight, s.RestSecs); err != nil {
					return 0, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(planID), nil
}

// GetActive loads the member's active plan with its full tree, or
// sql.ErrNoRows when none is active.
func (r *RoutineRepo) GetActive(ctx context.Context, userID uint64) (model.RoutinePlan, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, usuario_id, nombre, descripcion, objetivo, fecha_creacion, fecha_vencimiento, activo
		 FROM rutina_planes WHERE usuario_id=? AND activo=1
		 ORDER BY fecha_creacion DESC LIMIT 1`, userID)
	p, err := scanRoutinePlan(row)
	if err != nil {
		return model.RoutinePlan{}, err
	}
	if err := r.loadTree(ctx, &p); err != nil {
		return model.RoutinePlan{}, err
	}
	return p, nil
}

// History returns every plan of a member, newest-created first, without
// the day trees; the list view only shows headers.
func (r *RoutineRepo) History(ctx context.Context, userID uint64) ([]model.RoutinePlan, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, usuario_id, nombre, descripcion, objetivo, fecha_creacion, fecha_vencimiento, activo
		 FROM rutina_planes WHERE usuario_id=? ORDER BY fecha_creacion DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoutinePlan{}
	for rows.Next() {
		p, err := scanRoutinePlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanRoutinePlan(row interface{ Scan(...any) error }) (model.RoutinePlan, error) {
	var p model.RoutinePlan
	var desc, goal sql.NullString
	var expires sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &desc, &goal, &p.CreatedAt, &expires, &p.Active)
	if err != nil {
		return model.RoutinePlan{}, err
	}
	p.Description = nullStr(desc)
	p.Goal = nullStr(goal)
	p.ExpiresAt = nullTime(expires)
	return p, nil
}

// loadTree fills in the days, exercises and sets of a plan.
func (r *RoutineRepo) loadTree(ctx context.Context, p *model.RoutinePlan) error {
	dayRows, err := r.DB.QueryContext(ctx,
		"SELECT id, plan_id, nombre, orden FROM rutina_dias WHERE plan_id=? ORDER BY orden, id", p.ID)
	if err != nil {
		return err
	}
	defer dayRows.Close()
	p.Days = []model.RoutineDay{}
	for dayRows.Next() {
		var d model.RoutineDay
		if err := dayRows.Scan(&d.ID, &d.PlanID, &d.Name, &d.Order); err != nil {
			return err
		}
		d.Exercises = []model.RoutineExercise{}
		p.Days = append(p.Days, d)
	}
	if err := dayRows.Err(); err != nil {
		return err
	}
	for i := range p.Days {
		exRows, err := r.DB.QueryContext(ctx,
			`SELECT re.id, re.dia_id, re.ejercicio_id, e.nombre, re.orden
			 FROM rutina_ejercicios re JOIN ejercicios e ON e.id = re.ejercicio_id
			 WHERE re.dia_id=? ORDER BY re.orden, re.id`, p.Days[i].ID)
		if err != nil {
			return err
		}
		for exRows.Next() {
			var ex model.RoutineExercise
			if err := exRows.Scan(&ex.ID, &ex.DayID, &ex.ExerciseID, &ex.ExerciseName, &ex.Order); err != nil {
				exRows.Close()
				return err
			}
			ex.Sets = []model.ExerciseSet{}
			p.Days[i].Exercises = append(p.Days[i].Exercises, ex)
		}
		if err := exRows.Err(); err != nil {
			exRows.Close()
			return err
		}
		exRows.Close()
		for j := range p.Days[i].Exercises {
			setRows, err := r.DB.QueryContext(ctx,
				`SELECT id, numero, repeticiones, peso, descanso FROM rutina_series
				 WHERE rutina_ejercicio_id=? ORDER BY numero`, p.Days[i].Exercises[j].ID)
			if err != nil {
				return err
			}
			for setRows.Next() {
				var s model.ExerciseSet
				if err := setRows.Scan(&s.ID, &s.Number, &s.Reps, &s.Weight, &s.RestSecs); err != nil {
					setRows.Close()
					return err
				}
				p.Days[i].Exercises[j].Sets = append(p.Days[i].Exercises[j].Sets, s)
			}
			if err := setRows.Err(); err != nil {
				setRows.Close()
				return err
			}
			setRows.Close()
		}
	}
	return nil
}
