package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
)

// PlanHandler serves membership plans and the plan type catalog.
type PlanHandler struct {
	Plans *repository.PlanRepo
}

func NewPlanHandler(plans *repository.PlanRepo) *PlanHandler {
	if plans == nil {
		panic("nil repository passed to NewPlanHandler")
	}
	return &PlanHandler{Plans: plans}
}

type planReq struct {
	Name         string  `json:"nombre"`
	Price        float64 `json:"precio"`
	MonthlyQuota int     `json:"clases_mensuales"`
	PlanTypeID   *uint64 `json:"tipo_plan_id"`
}

type planJSON struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"nombre"`
	Price        float64 `json:"precio"`
	MonthlyQuota int     `json:"clases_mensuales"`
	PlanTypeID   *uint64 `json:"tipo_plan_id,omitempty"`
	PlanTypeName *string `json:"tipo_plan,omitempty"`
	DurationDays *int    `json:"duracion_dias,omitempty"`
}

func toPlanJSON(p *model.Plan) planJSON {
	return planJSON{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		MonthlyQuota: p.MonthlyQuota,
		PlanTypeID:   p.PlanTypeID,
		PlanTypeName: p.PlanTypeName,
		DurationDays: p.DurationDays,
	}
}

func (h *PlanHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	plans, err := h.Plans.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]planJSON, 0, len(plans))
	for i := range plans {
		out = append(out, toPlanJSON(&plans[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlanHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Plans.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPlanJSON(&p))
}

func (h *PlanHandler) Create(c echo.Context) error {
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre es requerido"})
	}
	p := model.Plan{
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		MonthlyQuota: req.MonthlyQuota,
		PlanTypeID:   req.PlanTypeID,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Plans.Create(ctx, &p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	p.ID = id
	return c.JSON(http.StatusCreated, toPlanJSON(&p))
}

func (h *PlanHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := model.Plan{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		MonthlyQuota: req.MonthlyQuota,
		PlanTypeID:   req.PlanTypeID,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Plans.Update(ctx, &p); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toPlanJSON(&p))
}

// Delete removes a plan; members holding it keep their account with the
// plan reference nulled by the foreign key.
func (h *PlanHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Plans.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTypes returns the plan type catalog (monthly, quarterly, annual...).
func (h *PlanHandler) ListTypes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	types, err := h.Plans.ListTypes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(types))
	for _, t := range types {
		out = append(out, echo.Map{"id": t.ID, "nombre": t.Name, "duracion_dias": t.DurationDays})
	}
	return c.JSON(http.StatusOK, out)
}
