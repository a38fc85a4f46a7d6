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
	"github.com/gymadmin/backoffice/internal/queue"
	"github.com/gymadmin/backoffice/internal/repository"
	queuepub "github.com/gymadmin/backoffice/internal/service"
	"github.com/gymadmin/backoffice/internal/utils"
)

// AccessHandler implements QR door control: validating scans, serving the
// access history and producing signed payloads for member QR codes.
type AccessHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Accesses *repository.AccessRepo
}

func NewAccessHandler(cfg config.Config, users *repository.UserRepo, accesses *repository.AccessRepo) *AccessHandler {
	if users == nil || accesses == nil {
		panic("nil repository passed to NewAccessHandler")
	}
	return &AccessHandler{Cfg: cfg, Users: users, Accesses: accesses}
}

type validateReq struct {
	QRData string `json:"qr_data"`
}

type validateResp struct {
	Status  string `json:"status"`
	Message string `json:"mensaje"`
	Name    string `json:"nombre"`
	Role    string `json:"rol"`
	Color   string `json:"color"`
}

// Validate decides whether the scanned QR opens the door. The signature is
// checked before any roster lookup so forged codes never touch the
// database. Every attempt is logged; a failed log write is swallowed
// because the decision was already made.
func (h *AccessHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.QRData) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_data requerido"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	resp := validateResp{Status: model.AccessDenied, Color: model.ColorDenied}
	dni, genuine := utils.ParseQR(h.Cfg.QRSecret, strings.TrimSpace(req.QRData))
	if !genuine {
		resp.Message = "Código QR inválido o adulterado"
		h.logAttempt(c, resp, dni)
		return c.JSON(http.StatusOK, resp)
	}

	u, err := h.Users.GetByDNI(ctx, dni)
	if err != nil {
		if err == sql.ErrNoRows {
			resp.Message = "No registrado"
			h.logAttempt(c, resp, dni)
			return c.JSON(http.StatusOK, resp)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	dec := model.EvaluateAccess(&u, time.Now().UTC())
	resp = validateResp{
		Status:  dec.Status,
		Message: dec.Message,
		Name:    dec.Name,
		Role:    dec.Role,
		Color:   dec.Color,
	}
	h.logAttempt(c, resp, dni)
	return c.JSON(http.StatusOK, resp)
}

// logAttempt appends to the access log and publishes the domain event, both
// best effort.
func (h *AccessHandler) logAttempt(c echo.Context, resp validateResp, dni string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	entry := model.AccessEntry{
		Name:       resp.Name,
		DNI:        dni,
		Role:       resp.Role,
		Method:     "QR",
		Result:     resp.Message,
		Authorized: resp.Status == model.AccessAuthorized,
	}
	if err := h.Accesses.Insert(ctx, &entry); err != nil {
		log.Printf("acceso: log write failed for %s: %v", dni, err)
	}
	_ = queuepub.PublishAccessRecorded(ctx, queue.AccessRecordedEvent{
		DNI:        dni,
		Name:       resp.Name,
		Role:       resp.Role,
		Authorized: entry.Authorized,
		Result:     resp.Message,
		At:         time.Now().UTC().Format(time.RFC3339),
	})
}

// History returns the latest 50 access attempts. The route sits behind the
// Redis response cache; the door display polls it every few seconds.
func (h *AccessHandler) History(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	entries, err := h.Accesses.ListRecent(ctx, 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, echo.Map{
			"id":         e.ID,
			"nombre":     e.Name,
			"dni":        e.DNI,
			"rol":        e.Role,
			"metodo":     e.Method,
			"resultado":  e.Result,
			"autorizado": e.Authorized,
			"fecha":      e.At.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// QRFor returns the signed QR payload for a roster member so front desk
// can print membership cards.
func (h *AccessHandler) QRFor(c echo.Context) error {
	dni := strings.TrimSpace(c.Param("dni"))
	if dni == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dni requerido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByDNI(ctx, dni)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dni":     u.DNI,
		"nombre":  u.FullName,
		"qr_data": utils.SignQR(h.Cfg.QRSecret, u.DNI),
	})
}
