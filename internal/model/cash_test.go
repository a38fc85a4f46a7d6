package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAbsoluteAmount(t *testing.T) {
	m := CashMovement{Type: MovementExpense, Amount: -500, Description: "ajuste"}
	m.Normalize()
	assert.Equal(t, 500.0, m.Amount)
	assert.Equal(t, MovementExpense, m.Type)
}

func TestNormalizeCoercesExpenseKeywords(t *testing.T) {
	cases := []string{
		"Compra de mancuernas",
		"pago proveedor bebidas",
		"Sueldo marzo",
		"Alquiler local",
		"gasto limpieza",
	}
	for _, desc := range cases {
		m := CashMovement{Type: MovementIncome, Amount: 100, Description: desc}
		m.Normalize()
		assert.Equal(t, MovementExpense, m.Type, desc)
	}
}

func TestNormalizeUnknownTypeDefaultsToIncome(t *testing.T) {
	m := CashMovement{Type: "otro", Amount: 100, Description: "venta de agua"}
	m.Normalize()
	assert.Equal(t, MovementIncome, m.Type)
}

func TestNormalizeDefaultsPaymentMethod(t *testing.T) {
	m := CashMovement{Type: MovementIncome, Amount: 100, Description: "cuota"}
	m.Normalize()
	assert.Equal(t, "Efectivo", m.PaymentMethod)

	m = CashMovement{Type: MovementIncome, Amount: 100, Description: "cuota", PaymentMethod: "Transferencia"}
	m.Normalize()
	assert.Equal(t, "Transferencia", m.PaymentMethod)
}
