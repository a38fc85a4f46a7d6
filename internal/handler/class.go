package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
)

// ClassHandler serves the class schedule.
type ClassHandler struct {
	Classes *repository.ClassRepo
}

func NewClassHandler(classes *repository.ClassRepo) *ClassHandler {
	if classes == nil {
		panic("nil repository passed to NewClassHandler")
	}
	return &ClassHandler{Classes: classes}
}

type occurrenceReq struct {
	Day  string  `json:"dia"`
	Hour float64 `json:"horario"`
}

type classReq struct {
	Name        string          `json:"nombre"`
	Coach       string          `json:"profesor"`
	Color       string          `json:"color"`
	MaxCapacity int             `json:"capacidad_max"`
	Occurrences []occurrenceReq `json:"horarios"`
}

type moveReq struct {
	OldDay  string  `json:"dia_actual"`
	OldHour float64 `json:"horario_actual"`
	NewDay  string  `json:"dia_nuevo"`
	NewHour float64 `json:"horario_nuevo"`
}

type classJSON struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"nombre"`
	Coach       string           `json:"profesor"`
	Color       string           `json:"color"`
	MaxCapacity int              `json:"capacidad_max"`
	Occurrences []occurrenceJSON `json:"horarios"`
}

type occurrenceJSON struct {
	ID   uint64  `json:"id"`
	Day  string  `json:"dia"`
	Hour float64 `json:"horario"`
}

func toClassJSON(c *model.Class) classJSON {
	out := classJSON{
		ID:          c.ID,
		Name:        c.Name,
		Coach:       c.Coach,
		Color:       c.Color,
		MaxCapacity: c.MaxCapacity,
		Occurrences: make([]occurrenceJSON, 0, len(c.Occurrences)),
	}
	for _, o := range c.Occurrences {
		out.Occurrences = append(out.Occurrences, occurrenceJSON{ID: o.ID, Day: o.Day, Hour: o.Hour})
	}
	return out
}

func (req *classReq) toModel() model.Class {
	c := model.Class{
		Name:        strings.TrimSpace(req.Name),
		Coach:       strings.TrimSpace(req.Coach),
		Color:       req.Color,
		MaxCapacity: req.MaxCapacity,
	}
	if c.Color == "" {
		c.Color = "#3b82f6"
	}
	if c.MaxCapacity <= 0 {
		c.MaxCapacity = 20
	}
	for _, o := range req.Occurrences {
		c.Occurrences = append(c.Occurrences, model.Occurrence{Day: o.Day, Hour: o.Hour})
	}
	return c
}

// List returns the full schedule; sits behind the Redis response cache.
func (h *ClassHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	classes, err := h.Classes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]classJSON, 0, len(classes))
	for i := range classes {
		out = append(out, toClassJSON(&classes[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClassHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cls, err := h.Classes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "clase no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toClassJSON(&cls))
}

func (h *ClassHandler) Create(c echo.Context) error {
	var req classReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre es requerido"})
	}
	cls := req.toModel()

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Classes.Create(ctx, &cls)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	cls.ID = id
	return c.JSON(http.StatusCreated, toClassJSON(&cls))
}

func (h *ClassHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req classReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cls := req.toModel()
	cls.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Classes.Update(ctx, &cls); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "clase no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toClassJSON(&cls))
}

func (h *ClassHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Classes.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "clase no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Move relocates one weekly occurrence. The old (day, hour) pair must
// match exactly; hours compare as floats (18.5 = 18:30).
func (h *ClassHandler) Move(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req moveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OldDay == "" || req.NewDay == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dia_actual y dia_nuevo son requeridos"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	err = h.Classes.MoveOccurrence(ctx, id, req.OldDay, req.OldHour, req.NewDay, req.NewHour)
	if err != nil {
		if err == repository.ErrOccurrenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "horario no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "move failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
