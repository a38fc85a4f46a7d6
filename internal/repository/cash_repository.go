package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gymadmin/backoffice/internal/model"
)

// CashRepo persists ledger movements and runs payment processing, the one
// operation that touches the ledger, the inventory and the membership in a
// single atomic unit.
type CashRepo struct{ DB *sql.DB }

func NewCashRepo(db *sql.DB) *CashRepo { return &CashRepo{DB: db} }

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPlanNotFound    = errors.New("plan not found")
)

// Payment kinds accepted by ProcessPayment.
const (
	PaymentPlan    = "plan"
	PaymentProduct = "producto"
)

// Insert records one normalized movement and returns its ID.
func (r *CashRepo) Insert(ctx context.Context, m *model.CashMovement) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO caja (tipo, monto, descripcion, metodo_pago) VALUES (?,?,?,?)",
		m.Type, m.Amount, m.Description, m.PaymentMethod)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns movements newest first.
func (r *CashRepo) List(ctx context.Context) ([]model.CashMovement, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, tipo, monto, descripcion, metodo_pago, fecha FROM caja ORDER BY fecha DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CashMovement{}
	for rows.Next() {
		var m model.CashMovement
		if err := rows.Scan(&m.ID, &m.Type, &m.Amount, &m.Description, &m.PaymentMethod, &m.At); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Summary aggregates income, expense and the running balance.
func (r *CashRepo) Summary(ctx context.Context) (model.CashSummary, error) {
	var s model.CashSummary
	err := r.DB.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN tipo=? THEN monto ELSE 0 END),0),
		COALESCE(SUM(CASE WHEN tipo=? THEN monto ELSE 0 END),0)
		FROM caja`, model.MovementIncome, model.MovementExpense).
		Scan(&s.Income, &s.Expense)
	if err != nil {
		return s, err
	}
	s.Balance = s.Income - s.Expense
	return s, nil
}

// PaymentInput describes one charge at the register. For a plan payment
// ItemID is the plan being bought; for merchandise it is the product.
type PaymentInput struct {
	Kind        string
	Amount      float64
	Method      string
	Description string
	UserID      uint64
	ItemID      uint64
	Quantity    int
}

// PaymentResult reports the side effects of a processed payment.
type PaymentResult struct {
	MovementID uint64     `json:"movimiento_id"`
	NewExpiry  *time.Time `json:"nueva_fecha_vencimiento,omitempty"`
	NewStock   *int       `json:"stock_restante,omitempty"`
}

// ProcessPayment writes the income movement and applies the side effect
// (stock decrement for merchandise, membership renewal for plans) in one
// transaction. Any failure rolls back everything including the ledger
// entry. Stock may go negative on oversells; the register records the sale
// as entered.
func (r *CashRepo) ProcessPayment(ctx context.Context, in PaymentInput, today time.Time) (PaymentResult, error) {
	var out PaymentResult
	if in.Quantity <= 0 {
		in.Quantity = 1
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	desc := in.Description
	switch in.Kind {
	case PaymentProduct:
		var name string
		err = tx.QueryRowContext(ctx,
			"SELECT nombre_producto FROM stock WHERE id=? FOR UPDATE", in.ItemID).Scan(&name)
		if err != nil {
			if err == sql.ErrNoRows {
				return out, ErrProductNotFound
			}
			return out, err
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE stock SET stock_actual = stock_actual - ? WHERE id=?",
			in.Quantity, in.ItemID); err != nil {
			return out, err
		}
		var left int
		if err = tx.QueryRowContext(ctx,
			"SELECT stock_actual FROM stock WHERE id=?", in.ItemID).Scan(&left); err != nil {
			return out, err
		}
		out.NewStock = &left
		if desc == "" {
			desc = fmt.Sprintf("Venta %s x%d", name, in.Quantity)
		}
	case PaymentPlan:
		expiry, err2 := r.renewMembershipTx(ctx, tx, in.UserID, in.ItemID, today)
		if err2 != nil {
			return out, err2
		}
		out.NewExpiry = &expiry
		if desc == "" {
			desc = fmt.Sprintf("Cobro plan (usuario %d)", in.UserID)
		}
	default:
		return out, fmt.Errorf("unknown payment kind %q", in.Kind)
	}

	mov := model.CashMovement{
		Type:          model.MovementIncome,
		Amount:        in.Amount,
		Description:   desc,
		PaymentMethod: in.Method,
	}
	if mov.Amount < 0 {
		mov.Amount = -mov.Amount
	}
	if mov.PaymentMethod == "" {
		mov.PaymentMethod = "Efectivo"
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO caja (tipo, monto, descripcion, metodo_pago) VALUES (?,?,?,?)",
		mov.Type, mov.Amount, mov.Description, mov.PaymentMethod)
	if err != nil {
		return out, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return out, err
	}
	out.MovementID = uint64(id)

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true
	return out, nil
}

// renewMembershipTx applies the renewal date math inside the payment
// transaction: remaining days stack while the membership is current, the
// clock restarts from today once lapsed. The class counter resets when the
// plan caps monthly bookings.
func (r *CashRepo) renewMembershipTx(ctx context.Context, tx *sql.Tx, userID, planID uint64, today time.Time) (time.Time, error) {
	var current sql.NullTime
	err := tx.QueryRowContext(ctx,
		"SELECT fecha_vencimiento FROM usuarios WHERE id=? FOR UPDATE", userID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	var quota int
	var duration sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT p.clases_mensuales, t.duracion_dias FROM planes p
		 LEFT JOIN tipos_planes t ON t.id = p.tipo_plan_id WHERE p.id=?`,
		planID).Scan(&quota, &duration)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ErrPlanNotFound
		}
		return time.Time{}, err
	}
	days := 30
	if duration.Valid && duration.Int64 > 0 {
		days = int(duration.Int64)
	}
	expiry := model.NextExpiry(today, nullTime(current), days)

	var classesLeft any
	if quota < model.UnlimitedQuota {
		classesLeft = quota
	}
	_, err = tx.ExecContext(ctx, `UPDATE usuarios SET plan_id=?,
		fecha_ultima_renovacion=?, fecha_vencimiento=?, estado_cuenta=?,
		clases_restantes=? WHERE id=?`,
		planID, today.Format("2006-01-02"), expiry.Format("2006-01-02"),
		model.StatusCurrent, classesLeft, userID)
	if err != nil {
		return time.Time{}, err
	}
	return expiry, nil
}
