package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/queue"
	"github.com/gymadmin/backoffice/internal/repository"
	queuepub "github.com/gymadmin/backoffice/internal/service"
)

// CashHandler serves the register: movements, the summary and unified
// payment processing.
type CashHandler struct {
	Cash *repository.CashRepo
}

func NewCashHandler(cash *repository.CashRepo) *CashHandler {
	if cash == nil {
		panic("nil repository passed to NewCashHandler")
	}
	return &CashHandler{Cash: cash}
}

type movementReq struct {
	Type          string  `json:"tipo"`
	Amount        float64 `json:"monto"`
	Description   string  `json:"descripcion"`
	PaymentMethod string  `json:"metodo_pago"`
}

type paymentReq struct {
	Kind        string  `json:"tipo"` // plan | producto
	Amount      float64 `json:"monto"`
	Method      string  `json:"metodo_pago"`
	Description string  `json:"descripcion"`
	UserID      uint64  `json:"usuario_id"`
	ItemID      uint64  `json:"producto_id"` // plan id for tipo=plan
	Quantity    int     `json:"cantidad"`
}

// Summary returns aggregate income/expense/balance; Redis-cached with a
// short TTL.
func (h *CashHandler) Summary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Cash.Summary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// ListMovements returns the ledger newest first.
func (h *CashHandler) ListMovements(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	movements, err := h.Cash.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(movements))
	for _, m := range movements {
		out = append(out, echo.Map{
			"id":          m.ID,
			"tipo":        m.Type,
			"monto":       m.Amount,
			"descripcion": m.Description,
			"metodo_pago": m.PaymentMethod,
			"fecha":       m.At.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// CreateMovement records one manual movement after normalization: the
// amount is stored as magnitude and expense-keyword descriptions force the
// Egreso type no matter what the client sent.
func (h *CashHandler) CreateMovement(c echo.Context) error {
	var req movementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Amount == 0 || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "monto y descripcion son requeridos"})
	}
	m := model.CashMovement{
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
	}
	m.Normalize()

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Cash.Insert(ctx, &m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          id,
		"tipo":        m.Type,
		"monto":       m.Amount,
		"descripcion": m.Description,
		"metodo_pago": m.PaymentMethod,
	})
}

// ProcessPayment runs one charge: a plan renewal or a merchandise sale.
// Ledger write and side effect commit or roll back together. The
// pago.procesado event is published after commit, best effort.
func (h *CashHandler) ProcessPayment(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Kind != repository.PaymentPlan && req.Kind != repository.PaymentProduct {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tipo debe ser plan o producto"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "monto debe ser positivo"})
	}
	if req.Kind == repository.PaymentPlan && req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "usuario_id es requerido para cobros de plan"})
	}
	if req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "producto_id es requerido"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Cash.ProcessPayment(ctx, repository.PaymentInput{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Method:      req.Method,
		Description: req.Description,
		UserID:      req.UserID,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
	}, time.Now().UTC())
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "producto no encontrado"})
		case repository.ErrPlanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan no encontrado"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "usuario no encontrado"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
		}
	}

	_ = queuepub.PublishPaymentProcessed(ctx, queue.PaymentProcessedEvent{
		MovementID: res.MovementID,
		Kind:       req.Kind,
		Amount:     req.Amount,
		Method:     req.Method,
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		At:         time.Now().UTC().Format(time.RFC3339),
	})

	resp := echo.Map{"status": "ok", "movimiento_id": res.MovementID}
	if res.NewExpiry != nil {
		resp["nueva_fecha_vencimiento"] = res.NewExpiry.Format("2006-01-02")
	}
	if res.NewStock != nil {
		resp["stock_restante"] = *res.NewStock
	}
	return c.JSON(http.StatusOK, resp)
}
