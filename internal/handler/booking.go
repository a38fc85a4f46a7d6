package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/repository"
)

// BookingHandler serves class reservations.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewBookingHandler(bookings *repository.BookingRepo) *BookingHandler {
	if bookings == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type bookingReq struct {
	UserID  uint64  `json:"usuario_id"`
	ClassID uint64  `json:"clase_id"`
	Day     string  `json:"dia"`
	Hour    float64 `json:"horario"`
}

// List returns reservations. With clase_id, dia and horario query params it
// filters to one occurrence and includes the occupancy header used by the
// schedule grid.
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	classIDStr := c.QueryParam("clase_id")
	if classIDStr == "" {
		rows, err := h.Bookings.List(ctx, 0, "", 0, false)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, rows)
	}

	classID, err := strconv.ParseUint(classIDStr, 10, 64)
	if err != nil || classID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "clase_id inválido"})
	}
	day := c.QueryParam("dia")
	hour, err := strconv.ParseFloat(c.QueryParam("horario"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "horario inválido"})
	}

	occ, err := h.Bookings.CountForOccurrence(ctx, classID, day, hour)
	if err != nil {
		if err == repository.ErrClassNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "clase no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rows, err := h.Bookings.List(ctx, classID, day, hour, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ocupados":  occ.Used,
		"capacidad": occ.Max,
		"reservas":  rows,
	})
}

// Create books a spot. The repository runs the quota, duplicate and
// capacity checks inside one transaction; each failure keeps its own
// message so the front end can show why the booking was refused.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.ClassID == 0 || req.Day == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "usuario_id, clase_id y dia son requeridos"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.Book(ctx, req.UserID, req.ClassID, req.Day, req.Hour, time.Now().UTC())
	if err != nil {
		switch err {
		case repository.ErrQuotaExceeded:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cupo mensual agotado"})
		case repository.ErrDuplicateBooking:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ya tenés una reserva para esta clase"})
		case repository.ErrClassNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "clase no encontrada"})
		case repository.ErrNoCapacity:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no cupos disponibles"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         b.ID,
		"usuario_id": b.UserID,
		"clase_id":   b.ClassID,
		"dia":        b.Day,
		"horario":    b.Hour,
		"fecha":      b.Date.Format("2006-01-02"),
	})
}

// Delete cancels a reservation.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Bookings.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reserva no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
