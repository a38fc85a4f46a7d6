package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stmtFor returns the CREATE TABLE statement for the given table.
func stmtFor(t *testing.T, table string) string {
	t.Helper()
	prefix := "CREATE TABLE IF NOT EXISTS " + table + " ("
	for _, q := range schemaStmts {
		if strings.Contains(q, prefix) {
			return q
		}
	}
	t.Fatalf("no schema statement for table %s", table)
	return ""
}

func TestUsuariosSchemaUniqueKeys(t *testing.T) {
	q := stmtFor(t, "usuarios")
	assert.Contains(t, q, "dni VARCHAR(20) NOT NULL UNIQUE")
	assert.Contains(t, q, "UNIQUE KEY uq_email (email)")
}

func TestUsuariosPlanFKSetNullOnDelete(t *testing.T) {
	// Deleting a plan must detach its members, not cascade into them.
	q := stmtFor(t, "usuarios")
	i := strings.Index(q, "fk_usuarios_plan")
	if i < 0 {
		t.Fatal("fk_usuarios_plan constraint missing")
	}
	assert.Contains(t, q[i:], "REFERENCES planes(id) ON DELETE SET NULL")
}

func TestReservasSchemaUniqueBooking(t *testing.T) {
	q := stmtFor(t, "reservas")
	assert.Contains(t, q, "UNIQUE KEY uq_reserva (usuario_id, clase_id, dia, horario)")
}
