package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/config"
	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
	"github.com/gymadmin/backoffice/internal/utils"
)

// UserHandler serves the roster: members under /api/alumnos and staff under
// /api/staff, /api/profesores and /api/administrativos. All four surfaces
// share the usuarios table and differ only in the profile filter.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: users}
}

type userReq struct {
	DNI           string   `json:"dni"`
	Password      string   `json:"password"`
	FullName      string   `json:"nombre_completo"`
	Email         *string  `json:"email"`
	Profile       string   `json:"perfil"`
	PlanID        *uint64  `json:"plan_id"`
	LastRenewal   string   `json:"fecha_ultima_renovacion"`
	ExpiresAt     string   `json:"fecha_vencimiento"`
	ClassesLeft   *int     `json:"clases_restantes"`
	Specialty     *string  `json:"especialidad"`
	Weight        *float64 `json:"peso"`
	Height        *float64 `json:"altura"`
	BMI           *float64 `json:"imc"`
	BirthDate     string   `json:"fecha_nacimiento"`
	MedicalCert   bool     `json:"apto_medico"`
	MedicalCertAt string   `json:"fecha_apto_medico"`
}

// toModel builds a model.User from the request, resolving the profile tag.
// BMI is recomputed from weight and height when both are present; clients
// send stale values.
func (h *UserHandler) toModel(c echo.Context, req *userReq, defaultProfile string) (model.User, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	profile := req.Profile
	if profile == "" {
		profile = defaultProfile
	}
	profileID, err := h.Users.ProfileIDByName(ctx, profile)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		DNI:         strings.TrimSpace(req.DNI),
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		ProfileID:   &profileID,
		ProfileName: profile,
		PlanID:      req.PlanID,
		ClassesLeft: req.ClassesLeft,
		Specialty:   req.Specialty,
		Weight:      req.Weight,
		Height:      req.Height,
		BMI:         req.BMI,
		MedicalCert: req.MedicalCert,
	}
	if u.LastRenewal, err = parseDate(req.LastRenewal); err != nil {
		return model.User{}, errBadDate
	}
	if u.ExpiresAt, err = parseDate(req.ExpiresAt); err != nil {
		return model.User{}, errBadDate
	}
	if u.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return model.User{}, errBadDate
	}
	if u.MedicalCertAt, err = parseDate(req.MedicalCertAt); err != nil {
		return model.User{}, errBadDate
	}
	if u.Weight != nil && u.Height != nil && *u.Height > 0 {
		bmi := *u.Weight / (*u.Height * *u.Height)
		u.BMI = &bmi
	}
	u.AccountStatus = u.ComputedStatus(time.Now().UTC())
	return u, nil
}

var errBadDate = echo.NewHTTPError(http.StatusBadRequest, "fecha inválida (YYYY-MM-DD)")

// list returns users for the given profile filter.
func (h *UserHandler) list(c echo.Context, profiles ...string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.ListByProfiles(ctx, profiles...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]userJSON, 0, len(users))
	for i := range users {
		out = append(out, toUserJSON(&users[i], now))
	}
	return c.JSON(http.StatusOK, out)
}

// create inserts a user under the given default profile. The password
// defaults to the DNI so front desk can enroll members without inventing
// credentials; the member changes it at first login.
func (h *UserHandler) create(c echo.Context, defaultProfile string) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.DNI) == "" || strings.TrimSpace(req.FullName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dni y nombre_completo son requeridos"})
	}
	u, err := h.toModel(c, &req, defaultProfile)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "perfil desconocido"})
		}
		if err == errBadDate {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha inválida (YYYY-MM-DD)"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	password := req.Password
	if password == "" {
		password = u.DNI
	}
	if u.PasswordHash, err = utils.HashPassword(password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Users.Create(ctx, &u)
	if err != nil {
		switch err {
		case repository.ErrDNIExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ya existe un usuario con ese DNI"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ya existe un usuario con ese email"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
		}
	}
	u.ID = id
	return c.JSON(http.StatusCreated, toUserJSON(&u, time.Now().UTC()))
}

// update rewrites the mutable fields of a user.
func (h *UserHandler) update(c echo.Context, defaultProfile string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	u, err := h.toModel(c, &req, defaultProfile)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "perfil desconocido"})
		}
		if err == errBadDate {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha inválida (YYYY-MM-DD)"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	u.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Update(ctx, &u); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		case repository.ErrDNIExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ya existe un usuario con ese DNI"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ya existe un usuario con ese email"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toUserJSON(&u, time.Now().UTC()))
}

func (h *UserHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserJSON(&u, time.Now().UTC()))
}

func (h *UserHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- members -----

func (h *UserHandler) ListMembers(c echo.Context) error  { return h.list(c, model.RoleMember) }
func (h *UserHandler) CreateMember(c echo.Context) error { return h.create(c, model.RoleMember) }
func (h *UserHandler) GetMember(c echo.Context) error    { return h.get(c) }
func (h *UserHandler) UpdateMember(c echo.Context) error { return h.update(c, model.RoleMember) }
func (h *UserHandler) DeleteMember(c echo.Context) error { return h.delete(c) }

// ----- staff -----

func (h *UserHandler) ListStaff(c echo.Context) error {
	return h.list(c, model.RoleCoach, model.RoleAdmin)
}
func (h *UserHandler) CreateStaff(c echo.Context) error { return h.create(c, model.RoleCoach) }
func (h *UserHandler) UpdateStaff(c echo.Context) error { return h.update(c, model.RoleCoach) }
func (h *UserHandler) DeleteStaff(c echo.Context) error { return h.delete(c) }

func (h *UserHandler) ListCoaches(c echo.Context) error { return h.list(c, model.RoleCoach) }
func (h *UserHandler) CreateCoach(c echo.Context) error { return h.create(c, model.RoleCoach) }
func (h *UserHandler) UpdateCoach(c echo.Context) error { return h.update(c, model.RoleCoach) }
func (h *UserHandler) DeleteCoach(c echo.Context) error { return h.delete(c) }

func (h *UserHandler) ListAdmins(c echo.Context) error  { return h.list(c, model.RoleAdmin) }
func (h *UserHandler) CreateAdmin(c echo.Context) error { return h.create(c, model.RoleAdmin) }
func (h *UserHandler) UpdateAdmin(c echo.Context) error { return h.update(c, model.RoleAdmin) }
func (h *UserHandler) DeleteAdmin(c echo.Context) error { return h.delete(c) }
