package repository

import (
	"context"
	"database/sql"

	"github.com/gymadmin/backoffice/internal/model"
)

// PlanRepo persists membership plans and their types.
type PlanRepo struct{ DB *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{DB: db} }

const planColumns = `p.id, p.nombre, p.precio, p.clases_mensuales,
	p.tipo_plan_id, t.nombre, t.duracion_dias`

const planJoins = ` FROM planes p LEFT JOIN tipos_planes t ON t.id = p.tipo_plan_id`

func scanPlan(row interface{ Scan(...any) error }) (model.Plan, error) {
	var p model.Plan
	var typeID sql.NullInt64
	var typeName sql.NullString
	var duration sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.MonthlyQuota,
		&typeID, &typeName, &duration)
	if err != nil {
		return model.Plan{}, err
	}
	p.PlanTypeID = nullID(typeID)
	p.PlanTypeName = nullStr(typeName)
	if duration.Valid {
		d := int(duration.Int64)
		p.DurationDays = &d
	}
	return p, nil
}

// List returns every plan with its type joined in.
func (r *PlanRepo) List(ctx context.Context) ([]model.Plan, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+planColumns+planJoins+" ORDER BY p.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plans := []model.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetByID fetches one plan.
func (r *PlanRepo) GetByID(ctx context.Context, id uint64) (model.Plan, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+planColumns+planJoins+" WHERE p.id=? LIMIT 1", id)
	return scanPlan(row)
}

// Create inserts a plan and returns its ID.
func (r *PlanRepo) Create(ctx context.Context, p *model.Plan) (uint64, error) {
	quota := p.MonthlyQuota
	if quota <= 0 {
		quota = model.UnlimitedQuota
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO planes (nombre, precio, clases_mensuales, tipo_plan_id) VALUES (?,?,?,?)",
		p.Name, p.Price, quota, p.PlanTypeID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites a plan's mutable fields.
func (r *PlanRepo) Update(ctx context.Context, p *model.Plan) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE planes SET nombre=?, precio=?, clases_mensuales=?, tipo_plan_id=? WHERE id=?",
		p.Name, p.Price, p.MonthlyQuota, p.PlanTypeID, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a plan. Users holding it are detached, not deleted: the
// plan_id foreign key is ON DELETE SET NULL.
func (r *PlanRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM planes WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListTypes returns the plan type catalog.
func (r *PlanRepo) ListTypes(ctx context.Context) ([]model.PlanType, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, nombre, duracion_dias FROM tipos_planes ORDER BY duracion_dias")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := []model.PlanType{}
	for rows.Next() {
		var t model.PlanType
		if err := rows.Scan(&t.ID, &t.Name, &t.DurationDays); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
