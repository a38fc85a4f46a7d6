package model

import (
	"strings"
	"time"
)

// Cash movement types. Amounts are always stored as non-negative
// magnitudes; the sign lives in the type alone.
const (
	MovementIncome  = "Ingreso"
	MovementExpense = "Egreso"
)

// CashMovement is one row of the caja ledger.
type CashMovement struct {
	ID            uint64
	Type          string
	Amount        float64
	Description   string
	PaymentMethod string
	At            time.Time
}

// CashSummary aggregates the ledger for the dashboard.
type CashSummary struct {
	Income  float64 `json:"ingresos"`
	Expense float64 `json:"egresos"`
	Balance float64 `json:"balance"`
}

// expenseKeywords mark descriptions that are always outflows no matter what
// type the client sent. Front desk keeps picking "Ingreso" by habit when
// registering supplier payments.
var expenseKeywords = []string{"compra", "pago proveedor", "proveedor", "sueldo", "alquiler", "gasto"}

// Normalize forces the amount to its magnitude and coerces the type to
// Egreso when the description names a known expense category. Unknown
// types fall back to Ingreso.
func (m *CashMovement) Normalize() {
	if m.Amount < 0 {
		m.Amount = -m.Amount
	}
	if m.Type != MovementIncome && m.Type != MovementExpense {
		m.Type = MovementIncome
	}
	desc := strings.ToLower(m.Description)
	for _, kw := range expenseKeywords {
		if strings.Contains(desc, kw) {
			m.Type = MovementExpense
			break
		}
	}
	if m.PaymentMethod == "" {
		m.PaymentMethod = "Efectivo"
	}
}
