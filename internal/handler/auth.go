package handler

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/config"
	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
	"github.com/gymadmin/backoffice/internal/utils"
)

// AuthHandler bundles dependencies for login and credential management.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	if users == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users}
}

type loginReq struct {
	DNI      string `json:"dni"`
	Password string `json:"password"`
}

type resetPasswordReq struct {
	DNI         string `json:"dni"`
	NewPassword string `json:"nueva_password"`
}

type loginResp struct {
	Token   string   `json:"token"`
	Expires string   `json:"expira"`
	User    userJSON `json:"usuario"`
}

// Login verifies DNI + password and issues an access token. Credentials
// predating the bcrypt migration are still stored in plaintext; when one of
// those matches we rehash and persist it before answering so the legacy
// path shrinks with every successful login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.DNI = strings.TrimSpace(req.DNI)
	if req.DNI == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dni y password son requeridos"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByDNI(ctx, req.DNI)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ok, needsRehash := utils.VerifyPassword(u.PasswordHash, req.Password)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
	}
	if needsRehash {
		if hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost); err == nil {
			if err := h.Users.UpdatePassword(ctx, u.DNI, hash); err != nil {
				log.Printf("login: rehash persist for %s failed: %v", u.DNI, err)
			}
		}
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.DNI, u.ProfileName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Token:   access.Token,
		Expires: access.Exp.Format(time.RFC3339),
		User:    toUserJSON(&u, time.Now().UTC()),
	})
}

// ResetPassword replaces a user's credential, always storing bcrypt.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.DNI = strings.TrimSpace(req.DNI)
	if req.DNI == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dni y nueva_password son requeridos"})
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, req.DNI, hash); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Me returns the authenticated user's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"dni":     c.Get("dni"),
		"rol":     c.Get("rol"),
	})
}

// userJSON is the wire shape of a user across the API. estado_cuenta and
// edad are derived on the way out, never read back.
type userJSON struct {
	ID            uint64   `json:"id"`
	DNI           string   `json:"dni"`
	FullName      string   `json:"nombre_completo"`
	Email         *string  `json:"email,omitempty"`
	Profile       string   `json:"perfil"`
	PlanID        *uint64  `json:"plan_id,omitempty"`
	PlanName      *string  `json:"plan_nombre,omitempty"`
	AccountStatus string   `json:"estado_cuenta"`
	LastRenewal   string   `json:"fecha_ultima_renovacion,omitempty"`
	ExpiresAt     string   `json:"fecha_vencimiento,omitempty"`
	ClassesLeft   *int     `json:"clases_restantes,omitempty"`
	Specialty     *string  `json:"especialidad,omitempty"`
	Weight        *float64 `json:"peso,omitempty"`
	Height        *float64 `json:"altura,omitempty"`
	BMI           *float64 `json:"imc,omitempty"`
	BirthDate     string   `json:"fecha_nacimiento,omitempty"`
	Age           *int     `json:"edad,omitempty"`
	MedicalCert   bool     `json:"apto_medico"`
	MedicalCertAt string   `json:"fecha_apto_medico,omitempty"`
}

func toUserJSON(u *model.User, today time.Time) userJSON {
	return userJSON{
		ID:            u.ID,
		DNI:           u.DNI,
		FullName:      u.FullName,
		Email:         u.Email,
		Profile:       u.ProfileName,
		PlanID:        u.PlanID,
		PlanName:      u.PlanName,
		AccountStatus: u.ComputedStatus(today),
		LastRenewal:   fmtDate(u.LastRenewal),
		ExpiresAt:     fmtDate(u.ExpiresAt),
		ClassesLeft:   u.ClassesLeft,
		Specialty:     u.Specialty,
		Weight:        u.Weight,
		Height:        u.Height,
		BMI:           u.BMI,
		BirthDate:     fmtDate(u.BirthDate),
		Age:           u.Age(today),
		MedicalCert:   u.MedicalCert,
		MedicalCertAt: fmtDate(u.MedicalCertAt),
	}
}
