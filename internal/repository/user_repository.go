package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gymadmin/backoffice/internal/model"
)

// UserRepo persists members and staff (usuarios table).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrDNIExists and ErrEmailExists are returned when a create/update
// collides with another user's DNI or email.
var (
	ErrDNIExists   = errors.New("dni already exists")
	ErrEmailExists = errors.New("email already exists")
)

// userDupError maps a duplicate-key error to the sentinel for the index
// that fired. The 1062 message names the violated key, so uq_email means
// the email collided and anything else is the DNI.
func userDupError(err error) error {
	if strings.Contains(err.Error(), "uq_email") {
		return ErrEmailExists
	}
	return ErrDNIExists
}

const userColumns = `u.id, u.dni, u.password_hash, u.nombre_completo, u.email,
	u.perfil_id, COALESCE(p.nombre,''), u.plan_id, pl.nombre,
	u.estado_cuenta, u.fecha_ultima_renovacion, u.fecha_vencimiento,
	u.clases_restantes, u.especialidad, u.peso, u.altura, u.imc,
	u.fecha_nacimiento, u.apto_medico, u.fecha_apto_medico, u.fecha_creacion`

const userJoins = ` FROM usuarios u
	LEFT JOIN perfiles p ON p.id = u.perfil_id
	LEFT JOIN planes pl ON pl.id = u.plan_id`

// scanUser reads one joined usuarios row into a model.User.
func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var email, planName, specialty sql.NullString
	var profileID, planID sql.NullInt64
	var lastRenewal, expiresAt, birthDate, medCertAt sql.NullTime
	var classesLeft sql.NullInt64
	var weight, height, bmi sql.NullFloat64
	err := row.Scan(&u.ID, &u.DNI, &u.PasswordHash, &u.FullName, &email,
		&profileID, &u.ProfileName, &planID, &planName,
		&u.AccountStatus, &lastRenewal, &expiresAt,
		&classesLeft, &specialty, &weight, &height, &bmi,
		&birthDate, &u.MedicalCert, &medCertAt, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Email = nullStr(email)
	u.PlanName = nullStr(planName)
	u.Specialty = nullStr(specialty)
	u.ProfileID = nullID(profileID)
	u.PlanID = nullID(planID)
	u.LastRenewal = nullTime(lastRenewal)
	u.ExpiresAt = nullTime(expiresAt)
	u.BirthDate = nullTime(birthDate)
	u.MedicalCertAt = nullTime(medCertAt)
	u.Weight = nullFloat(weight)
	u.Height = nullFloat(height)
	u.BMI = nullFloat(bmi)
	if classesLeft.Valid {
		n := int(classesLeft.Int64)
		u.ClassesLeft = &n
	}
	return u, nil
}

// Create inserts a user and returns its ID. Unique-index collisions map
// to ErrDNIExists or ErrEmailExists depending on which index fired.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO usuarios
		(dni, password_hash, nombre_completo, email, perfil_id, plan_id,
		 estado_cuenta, fecha_ultima_renovacion, fecha_vencimiento,
		 clases_restantes, especialidad, peso, altura, imc,
		 fecha_nacimiento, apto_medico, fecha_apto_medico)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(u.DNI), u.PasswordHash, u.FullName, u.Email,
		u.ProfileID, u.PlanID, u.AccountStatus, u.LastRenewal, u.ExpiresAt,
		u.ClassesLeft, u.Specialty, u.Weight, u.Height, u.BMI,
		u.BirthDate, u.MedicalCert, u.MedicalCertAt)
	if err != nil {
		if duplicateKey(err) {
			return 0, userDupError(err)
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+userJoins+" WHERE u.id=? LIMIT 1", id)
	return scanUser(row)
}

// GetByDNI fetches a user by their national identifier.
func (r *UserRepo) GetByDNI(ctx context.Context, dni string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+userJoins+" WHERE u.dni=? LIMIT 1",
		strings.TrimSpace(dni))
	return scanUser(row)
}

// ListByProfiles returns every user whose profile is in the given set,
// ordered by name. An empty set lists everyone.
func (r *UserRepo) ListByProfiles(ctx context.Context, profiles ...string) ([]model.User, error) {
	q := "SELECT " + userColumns + userJoins
	args := make([]any, 0, len(profiles))
	if len(profiles) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(profiles)), ",")
		q += " WHERE p.nombre IN (" + placeholders + ")"
		for _, p := range profiles {
			args = append(args, p)
		}
	}
	q += " ORDER BY u.nombre_completo"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable fields of a user. The password hash is left
// untouched; UpdatePassword owns credential changes.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE usuarios SET
		dni=?, nombre_completo=?, email=?, perfil_id=?, plan_id=?,
		fecha_ultima_renovacion=?, fecha_vencimiento=?, clases_restantes=?,
		especialidad=?, peso=?, altura=?, imc=?, fecha_nacimiento=?,
		apto_medico=?, fecha_apto_medico=?
		WHERE id=?`,
		strings.TrimSpace(u.DNI), u.FullName, u.Email, u.ProfileID, u.PlanID,
		u.LastRenewal, u.ExpiresAt, u.ClassesLeft, u.Specialty,
		u.Weight, u.Height, u.BMI, u.BirthDate,
		u.MedicalCert, u.MedicalCertAt, u.ID)
	if err != nil {
		if duplicateKey(err) {
			return userDupError(err)
		}
		return err
	}
	return requireRow(res)
}

// UpdatePassword stores a new credential hash for the user with the given
// DNI. Used by login rehash-on-legacy and the reset-password endpoint.
func (r *UserRepo) UpdatePassword(ctx context.Context, dni, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE usuarios SET password_hash=? WHERE dni=?", hash, strings.TrimSpace(dni))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a user. Bookings and routine plans go with it through the
// ON DELETE CASCADE constraints.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM usuarios WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ProfileIDByName resolves a role tag (Alumno, Profesor, Administrativo)
// to its perfiles id.
func (r *UserRepo) ProfileIDByName(ctx context.Context, name string) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM perfiles WHERE nombre=? LIMIT 1", name).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullID(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	n := uint64(v.Int64)
	return &n
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
