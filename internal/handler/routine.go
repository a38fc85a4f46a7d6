package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
)

// RoutineHandler serves the exercise library and workout plans.
type RoutineHandler struct {
	Routines *repository.RoutineRepo
}

func NewRoutineHandler(routines *repository.RoutineRepo) *RoutineHandler {
	if routines == nil {
		panic("nil repository passed to NewRoutineHandler")
	}
	return &RoutineHandler{Routines: routines}
}

type muscleGroupReq struct {
	Name string `json:"nombre"`
}

type exerciseReq struct {
	Name          string  `json:"nombre"`
	MuscleGroupID *uint64 `json:"grupo_muscular_id"`
}

type setReq struct {
	Number   int     `json:"numero_serie"`
	Reps     int     `json:"repeticiones"`
	Weight   float64 `json:"peso"`
	RestSecs int     `json:"descanso_segundos"`
}

type routineExerciseReq struct {
	ExerciseID uint64   `json:"ejercicio_id"`
	Order      int      `json:"orden"`
	Sets       []setReq `json:"series"`
}

type routineDayReq struct {
	Name      string               `json:"nombre"`
	Order     int                  `json:"orden"`
	Exercises []routineExerciseReq `json:"ejercicios"`
}

type routinePlanReq struct {
	UserID      uint64          `json:"usuario_id"`
	Name        string          `json:"nombre"`
	Description *string         `json:"descripcion"`
	Goal        *string         `json:"objetivo"`
	ExpiresAt   *string         `json:"fecha_vencimiento"`
	Days        []routineDayReq `json:"dias"`
}

func (h *RoutineHandler) ListMuscleGroups(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	groups, err := h.Routines.ListMuscleGroups(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(groups))
	for _, g := range groups {
		out = append(out, echo.Map{"id": g.ID, "nombre": g.Name})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RoutineHandler) CreateMuscleGroup(c echo.Context) error {
	var req muscleGroupReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre es requerido"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Routines.CreateMuscleGroup(ctx, req.Name)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "el grupo muscular ya existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "nombre": req.Name})
}

func (h *RoutineHandler) ListExercises(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	exercises, err := h.Routines.ListExercises(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, echo.Map{
			"id":                e.ID,
			"nombre":            e.Name,
			"grupo_muscular_id": e.MuscleGroupID,
			"grupo_muscular":    e.MuscleGroupName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RoutineHandler) CreateExercise(c echo.Context) error {
	var req exerciseReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre es requerido"})
	}
	e := model.Exercise{Name: req.Name, MuscleGroupID: req.MuscleGroupID}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Routines.CreateExercise(ctx, &e)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "el ejercicio ya existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "nombre": e.Name})
}

// CreatePlan stores a full nested routine and makes it the member's active
// plan, deactivating any previous one in the same transaction.
func (h *RoutineHandler) CreatePlan(c echo.Context) error {
	var req routinePlanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "usuario_id y nombre son requeridos"})
	}
	expires, err := parseDate(derefStr(req.ExpiresAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fecha_vencimiento inválida, formato YYYY-MM-DD"})
	}

	plan := model.RoutinePlan{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Goal:        req.Goal,
		ExpiresAt:   expires,
	}
	for _, d := range req.Days {
		day := model.RoutineDay{Name: d.Name, Order: d.Order}
		for _, ex := range d.Exercises {
			re := model.RoutineExercise{ExerciseID: ex.ExerciseID, Order: ex.Order}
			for _, s := range ex.Sets {
				re.Sets = append(re.Sets, model.ExerciseSet{
					Number:   s.Number,
					Reps:     s.Reps,
					Weight:   s.Weight,
					RestSecs: s.RestSecs,
				})
			}
			day.Exercises = append(day.Exercises, re)
		}
		plan.Days = append(plan.Days, day)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Routines.CreatePlan(ctx, &plan)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "mensaje": "rutina creada"})
}

// Active returns the member's current routine with the full day tree, or
// 404 when none is active.
func (h *RoutineHandler) Active(c echo.Context) error {
	userID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	plan, err := h.Routines.GetActive(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "el usuario no tiene rutina activa"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, routinePlanJSON(plan, true))
}

// History lists every routine the member has had, newest first, headers
// only.
func (h *RoutineHandler) History(c echo.Context) error {
	userID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	plans, err := h.Routines.History(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, routinePlanJSON(p, false))
	}
	return c.JSON(http.StatusOK, out)
}

func routinePlanJSON(p model.RoutinePlan, withTree bool) echo.Map {
	m := echo.Map{
		"id":             p.ID,
		"usuario_id":     p.UserID,
		"nombre":         p.Name,
		"descripcion":    p.Description,
		"objetivo":       p.Goal,
		"activo":         p.Active,
		"fecha_creacion": p.CreatedAt.Format(time.RFC3339),
	}
	if p.ExpiresAt != nil {
		m["fecha_vencimiento"] = fmtDate(p.ExpiresAt)
	} else {
		m["fecha_vencimiento"] = nil
	}
	if !withTree {
		return m
	}
	days := make([]echo.Map, 0, len(p.Days))
	for _, d := range p.Days {
		exercises := make([]echo.Map, 0, len(d.Exercises))
		for _, ex := range d.Exercises {
			sets := make([]echo.Map, 0, len(ex.Sets))
			for _, s := range ex.Sets {
				sets = append(sets, echo.Map{
					"numero_serie":      s.Number,
					"repeticiones":      s.Reps,
					"peso":              s.Weight,
					"descanso_segundos": s.RestSecs,
				})
			}
			exercises = append(exercises, echo.Map{
				"id":           ex.ID,
				"ejercicio_id": ex.ExerciseID,
				"ejercicio":    ex.ExerciseName,
				"orden":        ex.Order,
				"series":       sets,
			})
		}
		days = append(days, echo.Map{
			"id":         d.ID,
			"nombre":     d.Name,
			"orden":      d.Order,
			"ejercicios": exercises,
		})
	}
	m["dias"] = days
	return m
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
