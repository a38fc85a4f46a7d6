package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gymadmin/backoffice/internal/model"
	"github.com/gymadmin/backoffice/internal/repository"
)

// StockHandler serves merchandise inventory.
type StockHandler struct {
	Stock *repository.StockRepo
}

func NewStockHandler(stock *repository.StockRepo) *StockHandler {
	if stock == nil {
		panic("nil repository passed to NewStockHandler")
	}
	return &StockHandler{Stock: stock}
}

type productReq struct {
	Name         string  `json:"nombre_producto"`
	SalePrice    float64 `json:"precio_venta"`
	CurrentStock int     `json:"stock_actual"`
	InitialStock int     `json:"stock_inicial"`
	ImageURL     *string `json:"imagen_url"`
}

type productJSON struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"nombre_producto"`
	SalePrice    float64 `json:"precio_venta"`
	CurrentStock int     `json:"stock_actual"`
	InitialStock int     `json:"stock_inicial"`
	ImageURL     *string `json:"imagen_url,omitempty"`
}

func toProductJSON(p *model.Product) productJSON {
	return productJSON{
		ID:           p.ID,
		Name:         p.Name,
		SalePrice:    p.SalePrice,
		CurrentStock: p.CurrentStock,
		InitialStock: p.InitialStock,
		ImageURL:     p.ImageURL,
	}
}

func (h *StockHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	products, err := h.Stock.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productJSON, 0, len(products))
	for i := range products {
		out = append(out, toProductJSON(&products[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Stock.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "producto no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProductJSON(&p))
}

func (h *StockHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre_producto es requerido"})
	}
	p := model.Product{
		Name:         strings.TrimSpace(req.Name),
		SalePrice:    req.SalePrice,
		CurrentStock: req.CurrentStock,
		InitialStock: req.InitialStock,
		ImageURL:     req.ImageURL,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Stock.Create(ctx, &p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	p.ID = id
	return c.JSON(http.StatusCreated, toProductJSON(&p))
}

func (h *StockHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := model.Product{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		SalePrice:    req.SalePrice,
		CurrentStock: req.CurrentStock,
		InitialStock: req.InitialStock,
		ImageURL:     req.ImageURL,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Stock.Update(ctx, &p); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "producto no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toProductJSON(&p))
}

func (h *StockHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Stock.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "producto no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
